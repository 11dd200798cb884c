package services

import "errors"

var (
	// ErrNotFound is returned when an entity lookup by id fails.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
)

// ValidationError carries per-field registration errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
