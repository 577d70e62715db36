package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrForbidden          = errors.New("access forbidden")
	ErrNoteNotFound       = errors.New("note category not found")
	// ErrInternal marks storage, hashing or signing failures. The original
	// cause is kept in the chain for logging but never rendered to clients.
	ErrInternal = errors.New("internal error")
)
