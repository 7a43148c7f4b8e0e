package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/clock"
	"github.com/ficsure/quote-service/internal/domain"
)

// CreateQuoteCommand carries a field-validated quote creation request.
type CreateQuoteCommand struct {
	DocumentNumber string
	DocumentType   domain.DocumentType
	Email          string
	CoverageAmount float64
	Currency       string
	EffectiveDate  time.Time
	ExpiryDate     time.Time
}

// CreateQuoteResult pairs the quote with its origin, so the transport layer
// can signal whether the response was served from the idempotency cache.
type CreateQuoteResult struct {
	Quote     *domain.Quote
	FromCache bool
}

type QuoteService struct {
	quotes      application.QuoteStore
	idempotency application.IdempotencyStore
	pricer      application.PricingBackend
	events      application.EventPublisher
	metrics     application.MetricsRecorder
	clock       clock.Clock
	logger      *slog.Logger

	// enforceRequestHash rejects a reused key whose request body differs
	// from the original. When off, the key wins and the cached result is
	// returned regardless of payload.
	enforceRequestHash bool
}

func NewQuoteService(
	quotes application.QuoteStore,
	idempotency application.IdempotencyStore,
	pricer application.PricingBackend,
	events application.EventPublisher,
	metrics application.MetricsRecorder,
	clk clock.Clock,
	logger *slog.Logger,
	enforceRequestHash bool,
) *QuoteService {
	return &QuoteService{
		quotes:             quotes,
		idempotency:        idempotency,
		pricer:             pricer,
		events:             events,
		metrics:            metrics,
		clock:              clk,
		logger:             logger,
		enforceRequestHash: enforceRequestHash,
	}
}

// CreateQuote prices and stores a quote, deduplicated by idempotency key.
// A repeated key within the cache TTL returns the original result verbatim
// without touching pricing, storage, events or creation metrics.
func (s *QuoteService) CreateQuote(ctx context.Context, cmd CreateQuoteCommand, idempotencyKey string) (*CreateQuoteResult, error) {
	requestHash := ComputeHash(cmd)

	cached, err := s.idempotency.Lookup(ctx, idempotencyKey)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if cached != nil {
		if s.enforceRequestHash && cached.RequestHash != requestHash {
			return nil, application.NewIdempotencyKeyReusedError()
		}
		s.metrics.IdempotencyHit()
		s.logger.Info("quote served from idempotency cache",
			"idempotency_key", idempotencyKey,
			"quote_id", cached.Quote.ID,
		)
		return &CreateQuoteResult{Quote: cached.Quote, FromCache: true}, nil
	}

	now := s.clock.Now()
	quote, err := domain.NewQuote(
		cmd.DocumentNumber,
		cmd.DocumentType,
		cmd.Email,
		cmd.CoverageAmount,
		cmd.Currency,
		cmd.EffectiveDate,
		cmd.ExpiryDate,
		idempotencyKey,
		now,
	)
	if err != nil {
		return nil, err
	}

	price, err := s.pricer.Price(ctx, application.PriceRequest{
		DocumentType:   cmd.DocumentType,
		CoverageAmount: cmd.CoverageAmount,
	})
	if err != nil {
		// The resilient pricing client absorbs downstream failures into the
		// fallback, so an error here is a wiring or programming fault.
		return nil, application.NewInternalError(err)
	}
	quote.Price(price.Premium, price.Status)

	// Append-once: a concurrent request with the same key may have stored
	// first, in which case its result wins and ours is discarded before it
	// ever reaches the quote store.
	stored, err := s.idempotency.Store(ctx, &domain.IdempotencyRecord{
		Key:         idempotencyKey,
		RequestHash: requestHash,
		Quote:       quote,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if stored.Quote.ID != quote.ID {
		s.logger.Warn("idempotency store race lost, returning first stored result",
			"idempotency_key", idempotencyKey,
			"winner_quote_id", stored.Quote.ID,
		)
		s.metrics.IdempotencyHit()
		return &CreateQuoteResult{Quote: stored.Quote, FromCache: true}, nil
	}

	if err := s.quotes.Put(ctx, quote); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.metrics.QuoteCreated(quote.Status, quote.DocumentType)
	s.events.PublishQuoteIssued(application.QuoteIssuedEvent{
		QuoteID:        quote.ID.String(),
		DocumentNumber: quote.DocumentNumber,
		DocumentType:   quote.DocumentType,
		CoverageAmount: quote.CoverageAmount,
		Currency:       quote.Currency,
		Premium:        quote.Premium,
		Status:         quote.Status,
		IdempotencyKey: idempotencyKey,
		IssuedAt:       now.Format(time.RFC3339),
	})

	s.logger.Info("quote created",
		"quote_id", quote.ID,
		"document_type", quote.DocumentType,
		"status", quote.Status,
		"premium", quote.Premium,
	)

	return &CreateQuoteResult{Quote: quote, FromCache: false}, nil
}

// GetQuote returns a stored quote by id.
func (s *QuoteService) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	return s.quotes.FindByID(ctx, id)
}
