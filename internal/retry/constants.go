package retry

import "time"

// Default policy values
const (
	DefaultMaxRetries    = 3
	DefaultBaseDelay     = 100 * time.Millisecond
	DefaultMaxDelay      = 5 * time.Second
	DefaultMultiplier    = 2.0
	DefaultJitterPercent = 25
)

// Error messages
const (
	ErrMsgOperationFailed = "operation failed"
	ErrMsgCircuitOpen     = "circuit breaker is open"
)

// Log messages
const (
	LogMsgRetryScheduled   = "Transient failure, retrying"
	LogMsgRetrySucceeded   = "Operation succeeded after retry"
	LogMsgNonRetryable     = "Non-retryable failure"
	LogMsgRetriesExhausted = "Retries exhausted"
	LogMsgCircuitRejected  = "Circuit breaker rejected call"
	LogMsgBreakerOpened    = "Circuit breaker opened"
	LogMsgBreakerClosed    = "Circuit breaker closed"
	LogMsgBreakerHalfOpen  = "Circuit breaker half-open, allowing a trial call"
)
