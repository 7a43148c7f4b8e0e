package pricing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/breaker"
	"github.com/ficsure/quote-service/internal/domain"
	"github.com/ficsure/quote-service/internal/infrastructure/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend fails or succeeds on command.
type scriptedBackend struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (b *scriptedBackend) Price(ctx context.Context, req application.PriceRequest) (*application.PriceResult, error) {
	b.calls.Add(1)
	if b.fail.Load() {
		return nil, errors.New("provider down")
	}
	return &application.PriceResult{
		Premium: pricing.Premium(req.DocumentType, req.CoverageAmount),
		Status:  domain.StatusApproved,
	}, nil
}

func newResilient(backend application.PricingBackend, cfg breaker.Config) application.PricingBackend {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := breaker.New("pricing", cfg)
	return pricing.NewResilientClient(backend, cb, logger)
}

func breakerConfig() breaker.Config {
	return breaker.Config{
		Timeout:                  time.Second,
		ErrorThresholdPercentage: 50,
		ResetTimeout:             30 * time.Second,
		VolumeThreshold:          3,
	}
}

func TestResilientClient_PassesThroughOnSuccess(t *testing.T) {
	backend := &scriptedBackend{}
	client := newResilient(backend, breakerConfig())

	result, err := client.Price(context.Background(), application.PriceRequest{
		DocumentType:   domain.DocumentAuto,
		CoverageAmount: 50000,
	})

	require.NoError(t, err)
	assert.Equal(t, 1250.0, result.Premium)
	assert.Equal(t, domain.StatusApproved, result.Status)
}

func TestResilientClient_FallsBackOnFailure(t *testing.T) {
	backend := &scriptedBackend{}
	backend.fail.Store(true)
	client := newResilient(backend, breakerConfig())

	result, err := client.Price(context.Background(), application.PriceRequest{
		DocumentType:   domain.DocumentAuto,
		CoverageAmount: 50000,
	})

	require.NoError(t, err)
	// Same rate table as the success path, degraded status.
	assert.Equal(t, 1250.0, result.Premium)
	assert.Equal(t, domain.StatusPending, result.Status)
}

func TestResilientClient_OpenCircuitSkipsBackend(t *testing.T) {
	backend := &scriptedBackend{}
	backend.fail.Store(true)
	client := newResilient(backend, breakerConfig())

	ctx := context.Background()
	req := application.PriceRequest{DocumentType: domain.DocumentHome, CoverageAmount: 100000}

	for i := 0; i < 3; i++ {
		_, err := client.Price(ctx, req)
		require.NoError(t, err)
	}
	callsAtTrip := backend.calls.Load()
	require.Equal(t, int32(3), callsAtTrip)

	// Circuit is open now: fallback without touching the backend.
	for i := 0; i < 5; i++ {
		result, err := client.Price(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, result.Status)
		assert.Equal(t, 1800.0, result.Premium)
	}
	assert.Equal(t, callsAtTrip, backend.calls.Load())
}
