// Package apperr holds the error taxonomy shared by repositories, services
// and handlers. Each kind maps to one HTTP status in the handler layer.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("merchant account pending approval")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product no longer available")
	ErrCheckoutConflict   = errors.New("checkout conflict")
	ErrUnavailable        = errors.New("storage unavailable")
)

// Error is an error of a known kind with a client facing message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// New returns an error of kind with message shown to the client
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting
func Newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the client facing message of err, or fallback
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
