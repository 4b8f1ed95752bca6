package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied indicates the actor lacks capability or ownership.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict indicates a uniqueness violation on toggle-style creates.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState indicates an operation that does not apply to the
	// resource kind or its current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
