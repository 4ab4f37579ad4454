package domain

import "errors"

// Authentication and registration outcomes. These are expected, per-request
// results and map directly onto client responses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRegistration = errors.New("username, email and password are required")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrEmailTaken          = errors.New("email is already in use")
	ErrTooManyAttempts     = errors.New("too many failed login attempts")
)

// Store errors.
var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by stores that detect a uniqueness violation
	// but cannot tell which field collided.
	ErrUserExists = errors.New("user already exists")
)

// Token errors. At the HTTP boundary all of them collapse to ErrUnauthenticated;
// the distinction is kept for logs and metrics.
var (
	ErrEmptySubject      = errors.New("token subject must not be empty")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

// Access errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
)
