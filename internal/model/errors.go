package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session related errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Access related errors
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrSelfAccessViolation = errors.New("self access violation")
	ErrPermissionDenied    = errors.New("permission denied")

	// OAuth related errors
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrInvalidState    = errors.New("invalid oauth state")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
