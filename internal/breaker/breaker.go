// Package breaker implements a circuit breaker around a single unreliable
// downstream call. Failures are tracked over a rolling window of recent
// outcomes; once the failure rate crosses the configured threshold the
// circuit opens and calls are rejected immediately until a recovery trial
// succeeds.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ficsure/quote-service/internal/clock"
)

// State captures circuit breaker states.
type State int

const (
	// StateClosed indicates normal operation.
	StateClosed State = iota
	// StateOpen indicates the breaker is rejecting calls.
	StateOpen
	// StateHalfOpen indicates a single trial call is permitted.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when a call is rejected because the circuit is open
// or the half-open trial slot is already taken.
var ErrOpen = errors.New("circuit breaker is open")

// IsOpen reports whether err means the call was rejected by the breaker.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// Config controls thresholds for state transitions.
type Config struct {
	// Timeout is the maximum duration to wait for the wrapped call.
	// A call exceeding it counts as a failure.
	Timeout time.Duration
	// ErrorThresholdPercentage is the failure rate over the rolling window
	// that trips the circuit, in whole percent.
	ErrorThresholdPercentage int
	// ResetTimeout is how long the circuit stays open before a trial call
	// is allowed through.
	ResetTimeout time.Duration
	// VolumeThreshold is the minimum number of calls in the window before
	// the failure rate is evaluated at all.
	VolumeThreshold int
}

// StateChangeHook is called on every state transition. It is a notification
// only; a slow or failing hook must not affect breaker behavior, so keep it
// cheap and non-blocking.
type StateChangeHook func(name string, from, to State)

// CircuitBreaker guards one protected capability. Safe for concurrent use.
type CircuitBreaker struct {
	name string
	cfg  Config

	mu            sync.Mutex
	state         State
	window        []bool // true = failure, ring of the last VolumeThreshold outcomes
	windowIdx     int
	windowCount   int
	windowFails   int
	openedAt      time.Time
	trialInFlight bool
	clock         clock.Clock
	onStateChange StateChangeHook
}

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithClock injects a clock, used by tests to control time.
func WithClock(c clock.Clock) Option {
	return func(cb *CircuitBreaker) { cb.clock = c }
}

// OnStateChange registers a hook invoked after every transition.
func OnStateChange(hook StateChangeHook) Option {
	return func(cb *CircuitBreaker) { cb.onStateChange = hook }
}

// New creates a closed circuit breaker named after the capability it protects.
func New(name string, cfg Config, opts ...Option) *CircuitBreaker {
	if cfg.VolumeThreshold < 1 {
		cfg.VolumeThreshold = 1
	}
	cb := &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		state:  StateClosed,
		window: make([]bool, cfg.VolumeThreshold),
		clock:  clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Name returns the name of the protected capability.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state, promoting open to half-open if the reset
// timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.clock.Now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Do executes fn through the breaker with the configured timeout enforced.
// When the circuit is open, or the half-open trial slot is taken, fn is not
// invoked and ErrOpen is returned. A timed-out or failed call counts toward
// the failure rate and its error is returned to this caller.
func Do[T any](ctx context.Context, cb *CircuitBreaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	trial, err := cb.allow()
	if err != nil {
		return zero, err
	}

	callCtx, cancel := context.WithTimeout(ctx, cb.cfg.Timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		done <- outcome{v, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			cb.record(trial, false)
			return zero, out.err
		}
		cb.record(trial, true)
		return out.val, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			// The caller abandoned the call. That says nothing about the
			// backend, so it must not count against the rolling window.
			cb.release(trial)
			return zero, ctx.Err()
		}
		cb.record(trial, false)
		return zero, fmt.Errorf("call timed out after %s: %w", cb.cfg.Timeout, callCtx.Err())
	}
}

// allow decides whether a call may proceed. The returned bool marks this
// call as the half-open trial.
func (cb *CircuitBreaker) allow() (bool, error) {
	cb.mu.Lock()

	switch cb.state {
	case StateClosed:
		cb.mu.Unlock()
		return false, nil

	case StateOpen:
		if cb.clock.Now().Sub(cb.openedAt) < cb.cfg.ResetTimeout {
			cb.mu.Unlock()
			return false, ErrOpen
		}
		from := cb.state
		cb.state = StateHalfOpen
		cb.trialInFlight = true
		cb.mu.Unlock()
		cb.notify(from, StateHalfOpen)
		return true, nil

	case StateHalfOpen:
		if cb.trialInFlight {
			cb.mu.Unlock()
			return false, ErrOpen
		}
		cb.trialInFlight = true
		cb.mu.Unlock()
		return true, nil
	}

	cb.mu.Unlock()
	return false, nil
}

// release frees the half-open trial slot without registering an outcome,
// so the next caller may attempt the trial instead.
func (cb *CircuitBreaker) release(trial bool) {
	if !trial {
		return
	}
	cb.mu.Lock()
	cb.trialInFlight = false
	cb.mu.Unlock()
}

// record registers a call outcome and applies state transitions.
func (cb *CircuitBreaker) record(trial bool, success bool) {
	cb.mu.Lock()

	if trial {
		cb.trialInFlight = false
		from := cb.state
		if success {
			cb.state = StateClosed
			cb.resetWindowLocked()
			cb.mu.Unlock()
			cb.notify(from, StateClosed)
		} else {
			cb.state = StateOpen
			cb.openedAt = cb.clock.Now()
			cb.mu.Unlock()
			cb.notify(from, StateOpen)
		}
		return
	}

	if cb.state != StateClosed {
		// Outcome from a call dispatched before the circuit opened; the
		// window no longer drives decisions in this state.
		cb.mu.Unlock()
		return
	}

	cb.pushOutcomeLocked(!success)

	if cb.windowCount >= cb.cfg.VolumeThreshold && cb.failureRateLocked() >= cb.cfg.ErrorThresholdPercentage {
		cb.state = StateOpen
		cb.openedAt = cb.clock.Now()
		cb.mu.Unlock()
		cb.notify(StateClosed, StateOpen)
		return
	}
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) pushOutcomeLocked(failed bool) {
	if cb.windowCount == len(cb.window) {
		if cb.window[cb.windowIdx] {
			cb.windowFails--
		}
	} else {
		cb.windowCount++
	}
	cb.window[cb.windowIdx] = failed
	if failed {
		cb.windowFails++
	}
	cb.windowIdx = (cb.windowIdx + 1) % len(cb.window)
}

func (cb *CircuitBreaker) failureRateLocked() int {
	if cb.windowCount == 0 {
		return 0
	}
	return cb.windowFails * 100 / cb.windowCount
}

func (cb *CircuitBreaker) resetWindowLocked() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.windowIdx = 0
	cb.windowCount = 0
	cb.windowFails = 0
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onStateChange != nil && from != to {
		cb.onStateChange(cb.name, from, to)
	}
}
