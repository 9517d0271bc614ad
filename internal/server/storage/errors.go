package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidRole indicates that the supplied role is not a known role
	ErrInvalidRole = errors.New("invalid role")

	// ErrTokenNotFound indicates that session token was not found or is expired
	ErrTokenNotFound = errors.New("session token not found")

	// ErrSessionNotFound indicates that a PSI session record was not found.
	// Ownership violations are reported with this same error so that callers
	// cannot distinguish foreign records from absent ones.
	ErrSessionNotFound = errors.New("psi session not found")
)
