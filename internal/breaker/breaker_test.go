package breaker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ficsure/quote-service/internal/breaker"
	"github.com/ficsure/quote-service/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProvider = errors.New("provider unavailable")

func testConfig() breaker.Config {
	return breaker.Config{
		Timeout:                  time.Second,
		ErrorThresholdPercentage: 50,
		ResetTimeout:             30 * time.Second,
		VolumeThreshold:          3,
	}
}

func failingCall(counter *atomic.Int32) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		counter.Add(1)
		return "", errProvider
	}
}

func succeedingCall(counter *atomic.Int32) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		counter.Add(1)
		return "ok", nil
	}
}

func TestBreaker_TripsAfterVolumeThreshold(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	cb := breaker.New("test", testConfig(), breaker.WithClock(clk))

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		_, err := breaker.Do(ctx, cb, failingCall(&calls))
		require.ErrorIs(t, err, errProvider)
	}

	assert.Equal(t, breaker.StateOpen, cb.State())
	assert.Equal(t, int32(3), calls.Load())

	// Rejected immediately, wrapped call must not run.
	_, err := breaker.Do(ctx, cb, failingCall(&calls))
	assert.True(t, breaker.IsOpen(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestBreaker_StaysClosedBelowVolumeThreshold(t *testing.T) {
	ctx := context.Background()
	cb := breaker.New("test", testConfig())

	var calls atomic.Int32
	for i := 0; i < 2; i++ {
		_, err := breaker.Do(ctx, cb, failingCall(&calls))
		require.ErrorIs(t, err, errProvider)
	}

	// 100% failures but only 2 of the 3 required outcomes in the window.
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_StaysClosedBelowErrorThreshold(t *testing.T) {
	ctx := context.Background()
	cb := breaker.New("test", testConfig())

	var calls atomic.Int32
	_, err := breaker.Do(ctx, cb, failingCall(&calls))
	require.ErrorIs(t, err, errProvider)
	for i := 0; i < 2; i++ {
		_, err := breaker.Do(ctx, cb, succeedingCall(&calls))
		require.NoError(t, err)
	}

	// 1 of 3 failed: 33% is under the 50% threshold.
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_RecoversThroughHalfOpen(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	cb := breaker.New("test", testConfig(), breaker.WithClock(clk))

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		_, _ = breaker.Do(ctx, cb, failingCall(&calls))
	}
	require.Equal(t, breaker.StateOpen, cb.State())

	clk.Advance(31 * time.Second)
	assert.Equal(t, breaker.StateHalfOpen, cb.State())

	// Trial call succeeds, circuit closes and the real path is used again.
	result, err := breaker.Do(ctx, cb, succeedingCall(&calls))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, breaker.StateClosed, cb.State())

	_, err = breaker.Do(ctx, cb, succeedingCall(&calls))
	require.NoError(t, err)
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	cb := breaker.New("test", testConfig(), breaker.WithClock(clk))

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		_, _ = breaker.Do(ctx, cb, failingCall(&calls))
	}

	clk.Advance(31 * time.Second)

	_, err := breaker.Do(ctx, cb, failingCall(&calls))
	require.ErrorIs(t, err, errProvider)
	assert.Equal(t, breaker.StateOpen, cb.State())

	// The reset clock restarted on the failed trial.
	clk.Advance(10 * time.Second)
	_, err = breaker.Do(ctx, cb, failingCall(&calls))
	assert.True(t, breaker.IsOpen(err))
}

func TestBreaker_TimeoutCountsAsFailure(t *testing.T) {
	ctx := context.Background()
	cfg := breaker.Config{
		Timeout:                  20 * time.Millisecond,
		ErrorThresholdPercentage: 100,
		ResetTimeout:             30 * time.Second,
		VolumeThreshold:          1,
	}
	cb := breaker.New("test", cfg)

	_, err := breaker.Do(ctx, cb, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, breaker.StateOpen, cb.State())
}

func TestBreaker_SingleTrialInFlightDuringHalfOpen(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())
	cb := breaker.New("test", testConfig(), breaker.WithClock(clk))

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		_, _ = breaker.Do(ctx, cb, failingCall(&calls))
	}
	require.Equal(t, breaker.StateOpen, cb.State())

	clk.Advance(31 * time.Second)

	started := make(chan struct{})
	release := make(chan struct{})
	trialErr := make(chan error, 1)
	go func() {
		_, err := breaker.Do(ctx, cb, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "ok", nil
		})
		trialErr <- err
	}()
	<-started

	// While the trial is in flight every other caller is turned away and
	// its wrapped call must not run.
	before := calls.Load()
	_, err := breaker.Do(ctx, cb, failingCall(&calls))
	assert.True(t, breaker.IsOpen(err))
	assert.Equal(t, before, calls.Load())

	close(release)
	require.NoError(t, <-trialErr)
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_CallerCancellationNotCounted(t *testing.T) {
	cfg := breaker.Config{
		Timeout:                  time.Second,
		ErrorThresholdPercentage: 50,
		ResetTimeout:             30 * time.Second,
		VolumeThreshold:          1,
	}
	cb := breaker.New("test", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	defer close(block)

	done := make(chan error, 1)
	go func() {
		_, err := breaker.Do(ctx, cb, func(ctx context.Context) (string, error) {
			<-block
			return "", nil
		})
		done <- err
	}()

	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	// A single recorded failure would trip this breaker. An abandoned call
	// says nothing about the provider, so the window stays untouched.
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_NotifiesStateChanges(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock(time.Now())

	type transition struct{ from, to breaker.State }
	var transitions []transition
	cb := breaker.New("pricing", testConfig(),
		breaker.WithClock(clk),
		breaker.OnStateChange(func(name string, from, to breaker.State) {
			assert.Equal(t, "pricing", name)
			transitions = append(transitions, transition{from, to})
		}),
	)

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		_, _ = breaker.Do(ctx, cb, failingCall(&calls))
	}
	clk.Advance(31 * time.Second)
	_, err := breaker.Do(ctx, cb, succeedingCall(&calls))
	require.NoError(t, err)

	assert.Equal(t, []transition{
		{breaker.StateClosed, breaker.StateOpen},
		{breaker.StateOpen, breaker.StateHalfOpen},
		{breaker.StateHalfOpen, breaker.StateClosed},
	}, transitions)
}
