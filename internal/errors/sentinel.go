package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates the invocation itself was unusable: an unknown
	// flag, too many arguments, or no project directory.
	ErrValidation = errors.New("validation error")

	// ErrResolution indicates the target path could not be used as a project
	// directory.
	ErrResolution = errors.New("resolution error")

	// ErrWrite indicates a filesystem failure while materializing the project.
	ErrWrite = errors.New("write error")
)
