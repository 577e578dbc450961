// Package errors provides sentinel errors, structured error details and exit
// codes for fresh-init.
package errors

import (
	"fmt"
	"strings"
)

// DetailError captures structured error information for terminal output.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the path the error refers to (optional).
	Location string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString(e.Type)
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.Location != "" {
		b.WriteString("\n  Location: ")
		b.WriteString(e.Location)
	}
	if e.Hint != "" {
		b.WriteString("\n  Hint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, hint string) error {
	return &DetailError{
		Type:    "invalid invocation",
		Message: message,
		Hint:    hint,
		Cause:   ErrValidation,
	}
}

// NewResolutionError creates a resolution error for path. cause may be nil.
func NewResolutionError(message, path string, cause error) error {
	return &DetailError{
		Type:     "unusable project directory",
		Message:  message,
		Location: path,
		Cause:    join(ErrResolution, cause),
	}
}

// NewWriteError creates a write error for path. cause may be nil.
func NewWriteError(message, path string, cause error) error {
	return &DetailError{
		Type:     "write failed",
		Message:  message,
		Location: path,
		Cause:    join(ErrWrite, cause),
	}
}

func join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
