package suggest

import (
	"errors"
	"fmt"
)

// ErrRejected is returned when model output fails validation.
var ErrRejected = errors.New("suggestion rejected")

// RetryableError indicates a transient API failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}
