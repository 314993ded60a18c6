package ai

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed indicates the circuit is allowing requests to pass through.
	CircuitClosed CircuitState = iota
	// CircuitOpen indicates the circuit is blocking requests due to failures.
	CircuitOpen
	// CircuitHalfOpen lets a single trial call through after the recovery timeout.
	CircuitHalfOpen
)

// Default breaker settings.
const (
	DefaultFailureThreshold = 3
	DefaultRecoveryTimeout  = 30 * time.Second
)

// CircuitBreaker guards the chat model. While open, callers skip the model and
// go straight to the deterministic fallback.
type CircuitBreaker struct {
	mu               sync.RWMutex
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	state            CircuitState
	failureCount     int
	trialInFlight    bool
	lastFailureTime  time.Time
	now              func() time.Time
	onStateChange    func(name string, s CircuitState)
}

// NewCircuitBreaker creates a breaker with the default threshold and recovery timeout.
func NewCircuitBreaker(name string) *CircuitBreaker {
	return NewCircuitBreakerWithConfig(name, DefaultFailureThreshold, DefaultRecoveryTimeout)
}

// NewCircuitBreakerWithConfig creates a breaker; non-positive values fall back to the defaults.
func NewCircuitBreakerWithConfig(name string, failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = DefaultRecoveryTimeout
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// OnStateChange registers a hook fired after every transition. Call before use.
func (cb *CircuitBreaker) OnStateChange(fn func(name string, s CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(s CircuitState) {
	if cb.state == s {
		return
	}
	cb.state = s
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, s)
	}
}

// ShouldAttempt reports whether a call may go through. An open breaker moves to
// half-open once the recovery timeout has elapsed. While half-open only one
// trial call is admitted until it is recorded; every admitted call must be
// followed by RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) ShouldAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.recoveryTimeout {
			cb.setState(CircuitHalfOpen)
			cb.trialInFlight = true
			slog.Info("circuit breaker half-open", slog.String("breaker", cb.name))
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess resets the failure count and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	cb.trialInFlight = false
	if cb.state != CircuitClosed {
		cb.setState(CircuitClosed)
		slog.Info("circuit breaker closed after successful recovery", slog.String("breaker", cb.name))
	}
}

// RecordFailure counts a failure. A failed half-open trial reopens the circuit immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.trialInFlight = false
	cb.lastFailureTime = cb.now()

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.failureThreshold {
		if cb.state != CircuitOpen {
			slog.Warn("circuit breaker opened",
				slog.String("breaker", cb.name),
				slog.Int("failure_count", cb.failureCount),
				slog.Int("threshold", cb.failureThreshold))
		}
		cb.setState(CircuitOpen)
	}
}

// GetState returns the current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// String returns a string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
