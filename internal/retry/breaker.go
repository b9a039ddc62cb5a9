package retry

import (
	"sync"
	"time"

	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
)

// State is a circuit breaker state.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker counts consecutive failed calls. At the threshold it opens and rejects calls
// until the recovery timeout has elapsed, then lets a single trial call through.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	recovery  time.Duration
	now       func() time.Time

	state    State
	failures int
	openedAt time.Time
	trialing bool
}

// BreakerOption customises a Breaker.
type BreakerOption func(*Breaker)

// WithBreakerClock overrides the breaker's clock.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

// NewBreaker creates a closed breaker.
func NewBreaker(threshold int, recovery time.Duration, opts ...BreakerOption) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	b := &Breaker{threshold: threshold, recovery: recovery, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.recovery {
			return false
		}
		b.setState(StateHalfOpen)
		b.trialing = true
		logger.Info(LogMsgBreakerHalfOpen)
		return true
	case StateHalfOpen:
		if b.trialing {
			return false
		}
		b.trialing = true
		return true
	default:
		return true
	}
}

// Success records a call that reached the backend.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateClosed {
		logger.Info(LogMsgBreakerClosed)
	}
	b.failures = 0
	b.trialing = false
	b.setState(StateClosed)
}

// Failure records a call that failed for transient reasons.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialing = false
	if b.state == StateHalfOpen {
		b.open()
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.open()
	}
}

// Release gives back a call that ended without a verdict on the backend, such as one the
// caller cancelled. The state and failure count are unchanged; a half-open breaker lets the
// next call try instead.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialing = false
}

// State returns the current state. An open breaker whose recovery time has passed still
// reports OPEN until the next Allow.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	if b.state != StateOpen {
		logger.Warn(LogMsgBreakerOpened, "failures", b.failures, "recovery", b.recovery)
	}
	b.setState(StateOpen)
}

func (b *Breaker) setState(s State) {
	b.state = s
	metrics.BreakerState.Set(float64(s))
}
