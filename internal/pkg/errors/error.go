package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict: resource already exists")
	ErrRateLimited    = errors.New("too many requests")
	ErrSessionExpired = errors.New("session expired or invalid")
	ErrBadRequest     = errors.New("bad request")

	// ErrDuplicateEntry is returned by repositories on unique violations.
	ErrDuplicateEntry = fmt.Errorf("duplicate entry: %w", ErrConflict)
)

// Authentication failures. All of them match ErrUnauthorized.
var (
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrInactiveAccount     = fmt.Errorf("account is inactive: %w", ErrUnauthorized)
	ErrDeviceLimitExceeded = fmt.Errorf("device limit exceeded: %w", ErrUnauthorized)
	ErrTokenRevoked        = fmt.Errorf("token has been revoked: %w", ErrUnauthorized)
)

// DetailError attaches a user facing message to one of the sentinel errors.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

// WithDetail returns an error matching kind whose message is detail.
func WithDetail(kind error, detail string) error {
	return &DetailError{Kind: kind, Detail: detail}
}

// NotFound is shorthand for WithDetail(ErrNotFound, detail).
func NotFound(detail string) error { return WithDetail(ErrNotFound, detail) }

// Conflict is shorthand for WithDetail(ErrConflict, detail).
func Conflict(detail string) error { return WithDetail(ErrConflict, detail) }
