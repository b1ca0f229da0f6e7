package domain

import "errors"

// Sentinel errors shared across services and handlers. Handlers map these
// onto HTTP statuses; anything else is a 500 with the detail kept server-side.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("access denied")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError wraps ErrValidation with a caller-safe message.
func ValidationError(msg string) error {
	return &labeledError{sentinel: ErrValidation, msg: msg}
}

// ForbiddenError wraps ErrForbidden with a caller-safe message.
func ForbiddenError(msg string) error {
	return &labeledError{sentinel: ErrForbidden, msg: msg}
}

type labeledError struct {
	sentinel error
	msg      string
}

func (e *labeledError) Error() string { return e.msg }

func (e *labeledError) Unwrap() error { return e.sentinel }
