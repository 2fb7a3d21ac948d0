// Package resilience guards calls to the external commentary backend.
package resilience

import (
	"sync/atomic"
	"time"
)

// BreakerState represents the state of the circuit breaker
type BreakerState int32

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerConfig holds circuit breaker thresholds
type BreakerConfig struct {
	FailureThreshold int           // failures before opening
	RecoveryTimeout  time.Duration // wait before probing again
	SuccessThreshold int           // successes needed to close
}

// Breaker implements a circuit breaker for external service calls
type Breaker struct {
	config      BreakerConfig
	state       int32
	failures    int32
	successes   int32
	nextAttempt atomic.Int64 // unix nanos
}

// NewBreaker creates a circuit breaker, filling zero config with defaults.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 3
	}

	return &Breaker{
		config: config,
		state:  int32(StateClosed),
	}
}

// Call executes fn under breaker protection.
func (b *Breaker) Call(fn func() error) error {
	state := BreakerState(atomic.LoadInt32(&b.state))

	if state == StateOpen {
		if time.Now().UnixNano() < b.nextAttempt.Load() {
			return &OpenError{State: state}
		}
		atomic.StoreInt32(&b.state, int32(StateHalfOpen))
		atomic.StoreInt32(&b.successes, 0)
	}

	if err := fn(); err != nil {
		b.onFailure()
		return err
	}

	b.onSuccess()
	return nil
}

func (b *Breaker) onFailure() {
	failures := atomic.AddInt32(&b.failures, 1)
	atomic.StoreInt32(&b.successes, 0)

	if failures >= int32(b.config.FailureThreshold) {
		atomic.StoreInt32(&b.state, int32(StateOpen))
		b.nextAttempt.Store(time.Now().Add(b.config.RecoveryTimeout).UnixNano())
	}
}

func (b *Breaker) onSuccess() {
	atomic.StoreInt32(&b.failures, 0)

	if BreakerState(atomic.LoadInt32(&b.state)) == StateHalfOpen {
		if atomic.AddInt32(&b.successes, 1) >= int32(b.config.SuccessThreshold) {
			atomic.StoreInt32(&b.state, int32(StateClosed))
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	return BreakerState(atomic.LoadInt32(&b.state))
}

// Reset closes the breaker and clears counters.
func (b *Breaker) Reset() {
	atomic.StoreInt32(&b.state, int32(StateClosed))
	atomic.StoreInt32(&b.failures, 0)
	atomic.StoreInt32(&b.successes, 0)
}

// OpenError is returned when the breaker rejects a call.
type OpenError struct {
	State BreakerState
}

func (e *OpenError) Error() string {
	return "circuit breaker is " + e.State.String()
}
