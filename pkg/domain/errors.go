package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidColorFormat is returned when a color input matches none of the
// accepted forms (named, rgb-string, packed integer).
var ErrInvalidColorFormat = errors.New("invalid color format")

// ErrInvalidLinePattern is returned for a line pattern outside the known enum.
var ErrInvalidLinePattern = errors.New("invalid line pattern")

// ErrShapeNotFound is returned when a caller-visible shape ID does not resolve
// in the session registry. It is raised locally, before any dispatch.
var ErrShapeNotFound = errors.New("shape not found")

// ErrInvalidConnection is returned for connector requests that fail
// referential checks (e.g. a self-loop).
var ErrInvalidConnection = errors.New("invalid connection")

// ErrUnsupportedFormat is returned for export formats outside {png, jpg, pdf, svg}.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ErrUnsupportedOperation is returned when a request carries an unknown
// operation kind. Unknown kinds are rejected explicitly, never ignored.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ErrRelayTimeout is returned when no correlated response arrives before the
// dispatch deadline.
var ErrRelayTimeout = errors.New("relay timeout")

// ErrRelayConnectionLost is returned when the transport link to the privileged
// host is down, as opposed to a document-level failure.
var ErrRelayConnectionLost = errors.New("relay connection lost")

// ErrResolutionFailed is returned when a fallback chain is exhausted without
// an accepted candidate. Rare: template chains terminate in a blank document.
var ErrResolutionFailed = errors.New("resolution failed")

// ErrRegistryNotFound is returned by registry stores when no snapshot exists
// for a session ID.
var ErrRegistryNotFound = errors.New("registry not found")

// ErrSessionClosed is returned when an operation targets a session that has
// already been torn down.
var ErrSessionClosed = errors.New("session closed")

// ValidationError reports malformed or out-of-range input. Validation errors
// are resolved locally and never cross the isolation boundary.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // optional sentinel (ErrInvalidColorFormat, ...)
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError without a sentinel cause.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ExecutorError is an opaque failure surfaced by the privileged executor. The
// message is preserved for diagnostics but never parsed by the core.
type ExecutorError struct {
	Op      OperationKind
	Message string
}

func (e *ExecutorError) Error() string {
	if e.Op == "" {
		return "executor: " + e.Message
	}
	return fmt.Sprintf("executor: %s: %s", e.Op, e.Message)
}
