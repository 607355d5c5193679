package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/service"
)

const expiryPollInterval = time.Second

// ExpiryWorker watches the attempt expiry schedule and auto-submits
// attempts whose time ran out. The ZREM claim is the dedup point: only
// the goroutine that removes the member submits, so an attempt is
// auto-submitted exactly once even with several gateway instances.
type ExpiryWorker struct {
	rdb      *redis.Client
	attempts *service.AttemptService
	log      zerolog.Logger
}

func NewExpiryWorker(rdb *redis.Client, attempts *service.AttemptService, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		rdb:      rdb,
		attempts: attempts,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ExpiryWorker started")

	ticker := time.NewTicker(expiryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := w.rdb.ZRangeByScore(ctx, config.CacheKey.ExpiryScheduleKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		w.log.Error().Err(err).Msg("read expiry schedule")
		return
	}

	for _, attemptID := range due {
		if ctx.Err() != nil {
			return
		}

		removed, err := w.rdb.ZRem(ctx, config.CacheKey.ExpiryScheduleKey(), attemptID).Result()
		if err != nil {
			w.log.Error().Err(err).Str("attempt_id", attemptID).Msg("claim expired attempt")
			continue
		}
		if removed == 0 {
			// Another instance claimed it first.
			continue
		}

		if _, err := w.attempts.SubmitExpired(ctx, attemptID); err != nil {
			w.log.Error().Err(err).Str("attempt_id", attemptID).Msg("auto-submit expired attempt")
			continue
		}
		w.log.Info().Str("attempt_id", attemptID).Msg("attempt auto-submitted on expiry")
	}
}
