package retry

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
)

// Policy configures attempts and backoff. The delay before retry n (1-based) is
// min(MaxDelay, BaseDelay * Multiplier^(n-1) * jitter), jitter uniform in
// [1-JitterPercent/100, 1+JitterPercent/100].
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	JitterPercent uint64
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    DefaultMaxRetries,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		Multiplier:    DefaultMultiplier,
		JitterPercent: DefaultJitterPercent,
	}
}

// backoff builds a fresh backoff sequence; go-retry backoffs are stateful.
func (p Policy) backoff() goretry.Backoff {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	base := float64(p.BaseDelay)

	var n int
	var b goretry.Backoff = goretry.BackoffFunc(func() (time.Duration, bool) {
		d := base * math.Pow(mult, float64(n))
		n++
		if d >= math.MaxInt64 {
			return math.MaxInt64, false
		}
		return time.Duration(d), false
	})

	if p.JitterPercent > 0 {
		b = goretry.WithJitterPercent(p.JitterPercent, b)
	}
	if p.MaxDelay > 0 {
		b = goretry.WithCappedDuration(p.MaxDelay, b)
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return goretry.WithMaxRetries(uint64(maxRetries), b)
}

// Stats is a snapshot of executor counters.
type Stats struct {
	Attempts          int64  `json:"attempts"`
	Retries           int64  `json:"retries"`
	SuccessfulRetries int64  `json:"successful_retries"`
	Failures          int64  `json:"failures"`
	BreakerState      string `json:"breaker_state,omitempty"`
}

// Option customises an Executor.
type Option func(*Executor)

// WithBreaker guards every call with b.
func WithBreaker(b *Breaker) Option {
	return func(e *Executor) { e.breaker = b }
}

// WithPredicate sets the classification used when a call passes no predicate.
func WithPredicate(p Predicate) Option {
	return func(e *Executor) { e.retryable = p }
}

// Executor runs operations with retry, exponential backoff and jitter. Backoff sleeps
// block the calling goroutine, so it must only be used off the tick goroutine.
type Executor struct {
	policy    Policy
	retryable Predicate
	breaker   *Breaker

	attempts          atomic.Int64
	retries           atomic.Int64
	successfulRetries atomic.Int64
	failures          atomic.Int64
}

// NewExecutor creates an executor with the given default policy.
func NewExecutor(policy Policy, opts ...Option) *Executor {
	e := &Executor{policy: policy, retryable: IsTransient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the executor's default policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Execute runs op under the default policy. A nil predicate uses the executor's default.
func (e *Executor) Execute(ctx context.Context, name string, op func(context.Context) error, retryable Predicate) error {
	return e.ExecuteWithPolicy(ctx, name, e.policy, op, retryable)
}

// ExecuteWithPolicy runs op up to policy.MaxRetries+1 times. Non-retryable errors abort at
// once. Every failure is returned as an *OperationFailedError wrapping the last cause.
func (e *Executor) ExecuteWithPolicy(ctx context.Context, name string, policy Policy, op func(context.Context) error, retryable Predicate) error {
	if retryable == nil {
		retryable = e.retryable
	}
	log := logger.FromContext(ctx)

	if e.breaker != nil && !e.breaker.Allow() {
		log.Warn(LogMsgCircuitRejected, "operation", name)
		e.failures.Add(1)
		metrics.RetryFailures.WithLabelValues(name).Inc()
		return &OperationFailedError{Operation: name, Err: ErrCircuitOpen}
	}

	var (
		attempts  int
		last      error
		transient bool
	)

	next := policy.backoff()
	observed := goretry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := next.Next()
		if !stop {
			log.Warn(LogMsgRetryScheduled,
				"operation", name,
				"attempt", attempts,
				"delay", delay,
				"error", last)
		}
		return delay, stop
	})

	err := goretry.Do(ctx, observed, func(ctx context.Context) error {
		attempts++
		e.attempts.Add(1)
		metrics.RetryAttempts.WithLabelValues(name).Inc()

		opErr := op(ctx)
		if opErr == nil {
			return nil
		}
		last = opErr
		transient = retryable(opErr)
		if !transient {
			return opErr
		}
		return goretry.RetryableError(opErr)
	})

	if retried := attempts - 1; retried > 0 {
		e.retries.Add(int64(retried))
		metrics.RetryRetries.WithLabelValues(name).Add(float64(retried))
	}

	if err == nil {
		if attempts > 1 {
			e.successfulRetries.Add(1)
			metrics.RetrySuccessfulRetries.WithLabelValues(name).Inc()
			log.Info(LogMsgRetrySucceeded, "operation", name, "attempts", attempts)
		}
		if e.breaker != nil {
			e.breaker.Success()
		}
		return nil
	}

	e.failures.Add(1)
	metrics.RetryFailures.WithLabelValues(name).Inc()

	if e.breaker != nil {
		switch {
		case ctx.Err() != nil || errors.Is(last, context.Canceled):
			e.breaker.Release()
		case transient:
			e.breaker.Failure()
		default:
			// the backend answered, so it is reachable
			e.breaker.Success()
		}
	}

	cause := last
	switch {
	case cause == nil:
		cause = err
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if !errors.Is(cause, err) {
			cause = errors.Join(err, cause)
		}
	}

	if transient {
		log.Error(LogMsgRetriesExhausted, "operation", name, "attempts", attempts, "error", cause)
	} else {
		log.Warn(LogMsgNonRetryable, "operation", name, "attempts", attempts, "error", cause)
	}

	return &OperationFailedError{Operation: name, Attempts: attempts, Err: cause}
}

// Do runs op through e and returns its value.
func Do[T any](ctx context.Context, e *Executor, name string, op func(context.Context) (T, error), retryable Predicate) (T, error) {
	var out T
	err := e.Execute(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, retryable)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() Stats {
	s := Stats{
		Attempts:          e.attempts.Load(),
		Retries:           e.retries.Load(),
		SuccessfulRetries: e.successfulRetries.Load(),
		Failures:          e.failures.Load(),
	}
	if e.breaker != nil {
		s.BreakerState = e.breaker.State().String()
	}
	return s
}
