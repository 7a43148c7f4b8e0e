package pricing

import (
	"context"
	"log/slog"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/breaker"
	"github.com/ficsure/quote-service/internal/domain"
)

// ResilientClient decorates a PricingBackend with a circuit breaker and a
// fallback. It never returns an error: when the breaker is open, or the
// wrapped call fails or times out, the premium is computed locally from the
// same rate table and the quote is marked PENDING.
type ResilientClient struct {
	inner  application.PricingBackend
	cb     *breaker.CircuitBreaker
	logger *slog.Logger
}

func NewResilientClient(inner application.PricingBackend, cb *breaker.CircuitBreaker, logger *slog.Logger) application.PricingBackend {
	return &ResilientClient{
		inner:  inner,
		cb:     cb,
		logger: logger,
	}
}

func (c *ResilientClient) Price(ctx context.Context, req application.PriceRequest) (*application.PriceResult, error) {
	result, err := breaker.Do(ctx, c.cb, func(ctx context.Context) (*application.PriceResult, error) {
		return c.inner.Price(ctx, req)
	})
	if err != nil {
		if breaker.IsOpen(err) {
			c.logger.Warn("pricing circuit open, serving fallback",
				"document_type", req.DocumentType,
			)
		} else {
			c.logger.Warn("pricing call failed, serving fallback",
				"document_type", req.DocumentType,
				"error", err,
			)
		}
		return Fallback(req), nil
	}
	return result, nil
}

// Fallback derives a degraded result without the external dependency.
func Fallback(req application.PriceRequest) *application.PriceResult {
	return &application.PriceResult{
		Premium: Premium(req.DocumentType, req.CoverageAmount),
		Status:  domain.StatusPending,
	}
}
