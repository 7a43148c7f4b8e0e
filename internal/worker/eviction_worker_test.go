package worker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ficsure/quote-service/internal/clock"
	"github.com/ficsure/quote-service/internal/domain"
	"github.com/ficsure/quote-service/internal/infrastructure/memory"
	"github.com/ficsure/quote-service/internal/worker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictionWorker_SweepsExpiredRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.NewMock(time.Now())
	store := memory.NewIdempotencyStore(time.Hour, clk)

	_, err := store.Store(ctx, &domain.IdempotencyRecord{
		Key:       uuid.NewString(),
		Quote:     &domain.Quote{ID: uuid.New()},
		CreatedAt: clk.Now(),
	})
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := worker.NewEvictionWorker(store, 10*time.Millisecond, logger)
	go w.Start(ctx)

	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond)
}
