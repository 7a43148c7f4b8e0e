package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/ficsure/quote-service/internal/application"
)

// EvictionWorker periodically sweeps expired idempotency records. Lookups
// already drop expired records lazily; the sweep keeps memory bounded for
// keys that are never looked up again.
type EvictionWorker struct {
	store    application.IdempotencyStore
	interval time.Duration
	logger   *slog.Logger
}

func NewEvictionWorker(
	store application.IdempotencyStore,
	interval time.Duration,
	logger *slog.Logger,
) *EvictionWorker {
	return &EvictionWorker{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

func (w *EvictionWorker) Start(ctx context.Context) {
	w.logger.Info("eviction worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("eviction worker stopping")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error("eviction sweep failed", "error", err)
			}
		}
	}
}

func (w *EvictionWorker) sweep(ctx context.Context) error {
	evicted, err := w.store.EvictExpired(ctx)
	if err != nil {
		return err
	}
	if evicted > 0 {
		w.logger.Info("evicted expired idempotency records", "count", evicted)
	}
	return nil
}
