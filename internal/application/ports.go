package application

import (
	"context"

	"github.com/ficsure/quote-service/internal/domain"
)

// PriceRequest carries the fields the pricing provider needs.
type PriceRequest struct {
	DocumentType   domain.DocumentType
	CoverageAmount float64
}

// PriceResult is the provider's answer.
type PriceResult struct {
	Premium float64
	Status  domain.QuoteStatus
}

// PricingBackend is the port for the external premium computation. The
// production wiring decorates the raw client with a circuit breaker and
// fallback, so callers always receive a usable result.
type PricingBackend interface {
	Price(ctx context.Context, req PriceRequest) (*PriceResult, error)
}

// QuoteStore is the port for quote persistence.
type QuoteStore interface {
	Put(ctx context.Context, quote *domain.Quote) error
	FindByID(ctx context.Context, id string) (*domain.Quote, error)
}

// IdempotencyStore deduplicates quote creation by client-supplied key.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	// Lookup returns the live record for key, or nil when absent or expired.
	Lookup(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	// Store persists the record unless one already exists for the key, in
	// which case the existing record is returned untouched. The cache is
	// append-once per key.
	Store(ctx context.Context, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, error)
	// EvictExpired removes expired records, returning how many were dropped.
	EvictExpired(ctx context.Context) (int, error)
}

// QuoteIssuedEvent is the fact published after a quote is created.
type QuoteIssuedEvent struct {
	QuoteID        string              `json:"quote_id"`
	DocumentNumber string              `json:"document_number"`
	DocumentType   domain.DocumentType `json:"document_type"`
	CoverageAmount float64             `json:"coverage_amount"`
	Currency       string              `json:"currency"`
	Premium        float64             `json:"premium"`
	Status         domain.QuoteStatus  `json:"status"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
	IssuedAt       string              `json:"issued_at"`
}

// EventPublisher is the port for the downstream event sink. Publishing is
// fire-and-forget: it must never block the request path and failures are
// logged, not surfaced.
type EventPublisher interface {
	PublishQuoteIssued(event QuoteIssuedEvent)
}

// MetricsRecorder is the port for the metrics collaborator.
type MetricsRecorder interface {
	QuoteCreated(status domain.QuoteStatus, documentType domain.DocumentType)
	IdempotencyHit()
	BreakerStateChanged(state string)
}
