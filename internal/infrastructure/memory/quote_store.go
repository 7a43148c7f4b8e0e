package memory

import (
	"context"
	"sync"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/domain"
)

// QuoteStore holds created quotes keyed by id.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]*domain.Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: make(map[string]*domain.Quote),
	}
}

func (s *QuoteStore) Put(ctx context.Context, quote *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.ID.String()] = quote
	return nil
}

func (s *QuoteStore) FindByID(ctx context.Context, id string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quote, ok := s.quotes[id]
	if !ok {
		return nil, domain.NewQuoteNotFoundError(id)
	}
	return quote, nil
}

// Len reports the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

var _ application.QuoteStore = (*QuoteStore)(nil)
