package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// ErrEmptyBroadcast rejects a broadcast with no message text.
var ErrEmptyBroadcast = errors.New("broadcast message is empty")

// HistoryView is the admin's broadcast screen payload: the latest
// history snapshot plus any background failures that happened since the
// last fetch.
type HistoryView struct {
	Broadcasts []model.Broadcast        `json:"broadcasts"`
	Failures   []model.BroadcastFailure `json:"failures,omitempty"`
	FetchedAt  time.Time                `json:"fetched_at"`
}

// BroadcastService forwards broadcast operations upstream. Create and
// edit are fire-and-forget: the caller gets an accepted response
// immediately and any background failure is delivered with the next
// history fetch.
type BroadcastService struct {
	cfg *config.Config
	rdb *redis.Client
	api *upstream.Client
	log zerolog.Logger
}

// NewBroadcastService creates a new BroadcastService.
func NewBroadcastService(cfg *config.Config, rdb *redis.Client, api *upstream.Client, log zerolog.Logger) *BroadcastService {
	return &BroadcastService{
		cfg: cfg,
		rdb: rdb,
		api: api,
		log: log.With().Str("component", "broadcast_service").Logger(),
	}
}

// History returns the cached history for the caller, refreshing from
// the upstream on a cache miss, and registers the caller with the
// background poller so the cache stays warm while the screen is open.
func (s *BroadcastService) History(ctx context.Context, callerID int64) (*HistoryView, error) {
	if err := s.rdb.SAdd(ctx, config.CacheKey.BroadcastWatchersKey(), callerID).Err(); err != nil {
		s.log.Warn().Err(err).Int64("caller_id", callerID).Msg("register watcher")
	}

	view, err := s.cachedHistory(ctx, callerID)
	if err != nil {
		view, err = s.Refresh(ctx, callerID)
		if err != nil {
			return nil, err
		}
	}

	failures, err := s.takeFailures(ctx, callerID)
	if err != nil {
		s.log.Warn().Err(err).Int64("caller_id", callerID).Msg("collect failures")
	}
	view.Failures = failures
	return view, nil
}

// Refresh fetches the history upstream and caches it for the caller.
// The poll worker calls this on its fixed interval.
func (s *BroadcastService) Refresh(ctx context.Context, callerID int64) (*HistoryView, error) {
	broadcasts, err := s.api.BroadcastHistory(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if broadcasts == nil {
		broadcasts = []model.Broadcast{}
	}

	view := &HistoryView{Broadcasts: broadcasts, FetchedAt: time.Now()}
	raw, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	// Cache survives a few poll cycles so a watcher that closed the
	// screen ages out naturally.
	if err := s.rdb.Set(ctx, config.CacheKey.BroadcastHistoryKey(callerID), raw, 5*s.cfg.HistoryPollInterval).Err(); err != nil {
		s.log.Warn().Err(err).Int64("caller_id", callerID).Msg("cache history")
	}
	return view, nil
}

// Unwatch drops the caller from the poll set when the screen closes.
func (s *BroadcastService) Unwatch(ctx context.Context, callerID int64) error {
	return s.rdb.SRem(ctx, config.CacheKey.BroadcastWatchersKey(), callerID).Err()
}

// Watchers lists the admins whose history cache the poller keeps warm.
func (s *BroadcastService) Watchers(ctx context.Context) ([]int64, error) {
	members, err := s.rdb.SMembers(ctx, config.CacheKey.BroadcastWatchersKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out, nil
}

// Create accepts a broadcast and completes the upstream call in the
// background. The form clears as soon as this returns.
func (s *BroadcastService) Create(ctx context.Context, callerID int64, d model.BroadcastDraft) error {
	if d.Message == "" {
		return ErrEmptyBroadcast
	}
	go s.background(callerID, "create", d.Message, func(bg context.Context) error {
		return s.api.CreateBroadcast(bg, callerID, d)
	})
	return nil
}

// Edit accepts a broadcast rewrite and completes it in the background.
func (s *BroadcastService) Edit(ctx context.Context, callerID, broadcastID int64, d model.BroadcastDraft) error {
	if d.Message == "" {
		return ErrEmptyBroadcast
	}
	go s.background(callerID, "edit", d.Message, func(bg context.Context) error {
		return s.api.EditBroadcast(bg, callerID, broadcastID, d)
	})
	return nil
}

// Delete removes a broadcast synchronously; the history row disappears
// with the response.
func (s *BroadcastService) Delete(ctx context.Context, callerID, broadcastID int64) error {
	return s.api.DeleteBroadcast(ctx, callerID, broadcastID)
}

// background runs one fire-and-forget upstream call. The request
// context is long gone by the time this runs, so it gets its own
// deadline.
func (s *BroadcastService) background(callerID int64, action, message string, call func(context.Context) error) {
	bg, cancel := context.WithTimeout(context.Background(), s.cfg.UpstreamTimeout)
	defer cancel()

	if err := call(bg); err != nil {
		s.log.Error().Err(err).Str("action", action).Int64("caller_id", callerID).Msg("background broadcast call failed")
		s.recordFailure(bg, callerID, model.BroadcastFailure{
			Action:     action,
			Message:    message,
			Error:      displayError(err),
			OccurredAt: time.Now(),
		})
		return
	}

	// Warm the cache so the next history poll shows the new state.
	if _, err := s.Refresh(bg, callerID); err != nil {
		s.log.Warn().Err(err).Int64("caller_id", callerID).Msg("refresh after broadcast")
	}
}

func (s *BroadcastService) recordFailure(ctx context.Context, callerID int64, f model.BroadcastFailure) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	key := config.CacheKey.BroadcastFailureKey(callerID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error().Err(err).Int64("caller_id", callerID).Msg("record broadcast failure")
	}
}

func (s *BroadcastService) takeFailures(ctx context.Context, callerID int64) ([]model.BroadcastFailure, error) {
	key := config.CacheKey.BroadcastFailureKey(callerID)
	pipe := s.rdb.TxPipeline()
	itemsCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	items := itemsCmd.Val()
	out := make([]model.BroadcastFailure, 0, len(items))
	for _, raw := range items {
		var f model.BroadcastFailure
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *BroadcastService) cachedHistory(ctx context.Context, callerID int64) (*HistoryView, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.BroadcastHistoryKey(callerID)).Result()
	if err != nil {
		return nil, err
	}
	var view HistoryView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// displayError prefers the upstream's extracted message over Go error
// plumbing text.
func displayError(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
