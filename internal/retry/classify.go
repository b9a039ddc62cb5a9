package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
)

// Predicate reports whether an error is transient and the operation may be retried.
type Predicate func(error) bool

var retryableFragments = []string{
	"timeout",
	"timed out",
	"connection",
	"network",
	"communication",
	"broken pipe",
}

// IsRetryableSQLState classifies SQLSTATE codes: connection exceptions (08xxx), transaction
// rollbacks such as deadlocks and serialization failures (40xxx), and the generic HY000
// server error are transient.
func IsRetryableSQLState(state string) bool {
	return strings.HasPrefix(state, "08") || strings.HasPrefix(state, "40") || state == "HY000"
}

// IsRetryableMessage reports whether msg names a timeout or connectivity failure.
func IsRetryableMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// IsTransient is the default predicate: network and driver connection failures, deadline
// overruns and connectivity messages are retryable. Cancellation never is.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return IsRetryableMessage(err.Error())
}
