package pricing

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/config"
	"github.com/ficsure/quote-service/internal/domain"
)

// SimulatedClient stands in for the external pricing provider. It answers
// from the deterministic rate table but injects configurable latency and a
// failure probability so the circuit breaker sees realistic behavior. Swap
// it for a real provider client without touching the breaker.
type SimulatedClient struct {
	failureRate float64
	minLatency  time.Duration
	maxLatency  time.Duration
}

func NewSimulatedClient(cfg config.PricingConfig) application.PricingBackend {
	return &SimulatedClient{
		failureRate: cfg.FailureRate,
		minLatency:  cfg.MinLatency,
		maxLatency:  cfg.MaxLatency,
	}
}

func (c *SimulatedClient) Price(ctx context.Context, req application.PriceRequest) (*application.PriceResult, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	if rand.Float64() < c.failureRate {
		return nil, fmt.Errorf("pricing provider rejected request for %s", req.DocumentType)
	}

	return &application.PriceResult{
		Premium: Premium(req.DocumentType, req.CoverageAmount),
		Status:  domain.StatusApproved,
	}, nil
}

func (c *SimulatedClient) sleep(ctx context.Context) error {
	latency := c.minLatency
	if spread := c.maxLatency - c.minLatency; spread > 0 {
		latency += time.Duration(rand.Int63n(int64(spread)))
	}
	if latency <= 0 {
		return nil
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
