package feedback

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrStopped is returned when enqueueing into a stopped scheduler.
	ErrStopped = errors.New("feedback: scheduler stopped")

	// ErrInvalidPriority is returned for a message outside the defined range.
	ErrInvalidPriority = errors.New("feedback: invalid priority")

	// ErrRendererUnavailable is returned by renderers whose underlying
	// engine is not ready. The scheduler surfaces it and moves on; it never
	// lets a failed render block the queue.
	ErrRendererUnavailable = errors.New("feedback: renderer unavailable")
)

// RenderError wraps a renderer failure with the message that failed.
type RenderError struct {
	MessageText string
	Priority    Priority
	Err         error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("feedback [%s]: render %q: %v", e.Priority, e.MessageText, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}
