package errors

import (
	"errors"
	"fmt"
	"time"
)

// RetryNever is the RetryAfter value of a rejection that no amount of
// waiting can turn into an admission, such as a token request larger
// than the bucket capacity.
const RetryNever = time.Duration(-1)

// ValidationError describes an invalid configuration value. It wraps
// ErrInvalidConfiguration so callers can detect the whole class with
// errors.Is.
type ValidationError struct {
	Module string      // component that rejected the value
	Field  string      // name of the invalid field
	Value  interface{} // the offending value
	Reason string      // why it was rejected
	Hint   string      // optional suggestion for fixing it
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// WithHint attaches a suggestion to the error and returns the same
// instance for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// NewValidationError creates a ValidationError for the given module and field.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// OperationError wraps a failure raised by a caller-supplied operation
// or by an internal component operation. The cause is preserved
// unchanged and reachable through Unwrap.
type OperationError struct {
	Module    string // component where the failure surfaced
	Operation string // operation that failed
	Cause     error  // the underlying error, propagated as-is
	Context   string // optional additional context
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// WithContext attaches additional context to the error and returns the
// same instance for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

// NewOperationError creates an OperationError wrapping cause.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// RejectionError is returned when an admission strategy denies a request.
// RetryAfter is a hint for how long the caller should back off before
// retrying; RetryNever means the request can never be admitted.
//
// A rejection wraps ErrRateLimited, or ErrCapacityExceeded when a bounded
// queue was full, so callers can classify it with errors.Is.
type RejectionError struct {
	Strategy   string        // strategy that denied the request
	RetryAfter time.Duration // backoff hint; RetryNever if permanent
	Remaining  int           // remaining capacity at decision time
	cause      error
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	switch {
	case e.RetryAfter == RetryNever:
		return fmt.Sprintf("%s: admission rejected permanently (request exceeds capacity)", e.Strategy)
	case e.RetryAfter > 0:
		return fmt.Sprintf("%s: admission rejected, retry after %v", e.Strategy, e.RetryAfter)
	default:
		return fmt.Sprintf("%s: admission rejected", e.Strategy)
	}
}

// Unwrap returns the rejection class sentinel.
func (e *RejectionError) Unwrap() error {
	return e.cause
}

// NewRejectionError creates a RejectionError wrapping ErrRateLimited.
func NewRejectionError(strategy string, retryAfter time.Duration, remaining int) *RejectionError {
	return &RejectionError{
		Strategy:   strategy,
		RetryAfter: retryAfter,
		Remaining:  remaining,
		cause:      ErrRateLimited,
	}
}

// NewQueueFullError creates a RejectionError wrapping ErrCapacityExceeded,
// used when a bounded request queue cannot accept more work.
func NewQueueFullError(strategy string, retryAfter time.Duration) *RejectionError {
	return &RejectionError{
		Strategy:   strategy,
		RetryAfter: retryAfter,
		cause:      ErrCapacityExceeded,
	}
}

// RetryAfter extracts the backoff hint from a rejection. It returns
// (0, false) if err carries no hint or the rejection is permanent.
func RetryAfter(err error) (time.Duration, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) && rej.RetryAfter >= 0 {
		return rej.RetryAfter, true
	}
	return 0, false
}

// QueueTimeoutError is returned when a queued caller waited past its
// deadline before a slot became available. It is distinct from a
// RejectionError so callers can tell "rejected outright" apart from
// "waited then gave up".
type QueueTimeoutError struct {
	Strategy string        // strategy whose queue timed out
	Waited   time.Duration // how long the caller was queued
}

// Error implements the error interface.
func (e *QueueTimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after waiting %v in queue", e.Strategy, e.Waited)
}

// Unwrap returns ErrTimeout.
func (e *QueueTimeoutError) Unwrap() error {
	return ErrTimeout
}

// NewQueueTimeoutError creates a QueueTimeoutError.
func NewQueueTimeoutError(strategy string, waited time.Duration) *QueueTimeoutError {
	return &QueueTimeoutError{Strategy: strategy, Waited: waited}
}
