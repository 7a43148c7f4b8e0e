package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ficsure/quote-service/internal/clock"
	"github.com/ficsure/quote-service/internal/domain"
	"github.com/ficsure/quote-service/internal/infrastructure/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(key string, createdAt time.Time) *domain.IdempotencyRecord {
	return &domain.IdempotencyRecord{
		Key:         key,
		RequestHash: "hash",
		Quote:       &domain.Quote{ID: uuid.New()},
		CreatedAt:   createdAt,
	}
}

func TestIdempotencyStore_LookupMiss(t *testing.T) {
	store := memory.NewIdempotencyStore(time.Hour, clock.NewSystem())

	record, err := store.Lookup(context.Background(), "absent")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestIdempotencyStore_StoreThenLookup(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	store := memory.NewIdempotencyStore(time.Hour, clk)

	record := newRecord("key-1", clk.Now())
	stored, err := store.Store(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, record, stored)

	found, err := store.Lookup(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, record.Quote.ID, found.Quote.ID)
}

func TestIdempotencyStore_AppendOncePerKey(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	store := memory.NewIdempotencyStore(time.Hour, clk)

	first := newRecord("key-1", clk.Now())
	second := newRecord("key-1", clk.Now())

	_, err := store.Store(ctx, first)
	require.NoError(t, err)

	// The second store loses: the first record is returned untouched.
	winner, err := store.Store(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.Quote.ID, winner.Quote.ID)

	found, err := store.Lookup(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.Quote.ID, found.Quote.ID)
}

func TestIdempotencyStore_ConcurrentStoresSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewIdempotencyStore(time.Hour, clock.NewSystem())

	const racers = 32
	winners := make([]*domain.IdempotencyRecord, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			winner, err := store.Store(ctx, newRecord("key-1", time.Now()))
			assert.NoError(t, err)
			winners[i] = winner
		}(i)
	}
	wg.Wait()

	for _, winner := range winners {
		assert.Equal(t, winners[0].Quote.ID, winner.Quote.ID)
	}
}

func TestIdempotencyStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	store := memory.NewIdempotencyStore(time.Hour, clk)

	_, err := store.Store(ctx, newRecord("key-1", clk.Now()))
	require.NoError(t, err)

	clk.Advance(time.Hour + time.Minute)

	// Expired records are treated as absent and dropped lazily.
	found, err := store.Lookup(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.Equal(t, 0, store.Len())
}

func TestIdempotencyStore_EvictExpired(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	store := memory.NewIdempotencyStore(time.Hour, clk)

	_, err := store.Store(ctx, newRecord("old", clk.Now()))
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = store.Store(ctx, newRecord("fresh", clk.Now()))
	require.NoError(t, err)

	evicted, err := store.EvictExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, store.Len())
}
