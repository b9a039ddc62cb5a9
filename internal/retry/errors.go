package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrOperationFailed marks every error returned by an Executor after giving up.
	ErrOperationFailed = errors.New(ErrMsgOperationFailed)
	// ErrCircuitOpen is returned when the breaker rejects a call without attempting it.
	ErrCircuitOpen = errors.New(ErrMsgCircuitOpen)
)

// OperationFailedError wraps the last underlying cause of a failed operation.
type OperationFailedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempt(s): %v", e.Operation, ErrMsgOperationFailed, e.Attempts, e.Err)
}

func (e *OperationFailedError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrOperationFailed) match any OperationFailedError.
func (e *OperationFailedError) Is(target error) bool {
	return target == ErrOperationFailed
}
