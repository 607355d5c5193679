package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/service"
)

// HistoryWorker keeps the broadcast-history cache warm for every admin
// with the screen open. It polls on a fixed interval with no backoff:
// a failed cycle is logged and the next tick retries, so the screen
// catches up within one interval of the upstream recovering.
type HistoryWorker struct {
	broadcasts *service.BroadcastService
	interval   time.Duration
	log        zerolog.Logger
}

func NewHistoryWorker(broadcasts *service.BroadcastService, interval time.Duration, log zerolog.Logger) *HistoryWorker {
	return &HistoryWorker{
		broadcasts: broadcasts,
		interval:   interval,
		log:        log.With().Str("component", "history_worker").Logger(),
	}
}

func (w *HistoryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("HistoryWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("HistoryWorker stopped")
			return
		case <-ticker.C:
			w.refreshAll(ctx)
		}
	}
}

func (w *HistoryWorker) refreshAll(ctx context.Context) {
	watchers, err := w.broadcasts.Watchers(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("list watchers")
		return
	}

	for _, callerID := range watchers {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.broadcasts.Refresh(ctx, callerID); err != nil {
			w.log.Error().Err(err).Int64("caller_id", callerID).Msg("refresh history")
		}
	}
}
