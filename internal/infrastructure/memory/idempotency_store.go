// Package memory provides in-memory, mutex-guarded implementations of the
// application's store ports. Suitable for single-instance deployments; a
// multi-replica deployment substitutes these with a shared external cache
// behind the same interfaces.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/clock"
	"github.com/ficsure/quote-service/internal/domain"
)

// IdempotencyStore keeps at most one live record per key. Store is
// put-if-absent, so concurrent requests racing through a miss resolve to a
// single winning record. Expired records are dropped lazily on lookup and
// eagerly by EvictExpired.
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord
	ttl     time.Duration
	clock   clock.Clock
}

func NewIdempotencyStore(ttl time.Duration, clk clock.Clock) *IdempotencyStore {
	return &IdempotencyStore{
		records: make(map[string]*domain.IdempotencyRecord),
		ttl:     ttl,
		clock:   clk,
	}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	if record.Expired(s.clock.Now(), s.ttl) {
		delete(s.records, key)
		return nil, nil
	}
	return record, nil
}

func (s *IdempotencyStore) Store(ctx context.Context, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.Key]; ok && !existing.Expired(s.clock.Now(), s.ttl) {
		return existing, nil
	}
	s.records[record.Key] = record
	return record, nil
}

func (s *IdempotencyStore) EvictExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	evicted := 0
	for key, record := range s.records {
		if record.Expired(now, s.ttl) {
			delete(s.records, key)
			evicted++
		}
	}
	return evicted, nil
}

// Len reports how many records are held, expired or not.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

var _ application.IdempotencyStore = (*IdempotencyStore)(nil)
