// Package apperror defines the domain error taxonomy shared by the service,
// auth and HTTP layers.
//
// Services return *AppError values (or wrap them with fmt.Errorf and %w).
// The HTTP layer maps the sentinel in the chain to a status code via errors.Is,
// and shows AppError.Message to the client. Message is always safe to display;
// wrapped causes never are.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// DuplicateUser reports a registration for an email that already has an account.
// Registration is allowed to reveal this; login never is.
func DuplicateUser() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "email is already registered",
		Field:   "email",
	}
}

// InvalidCredentials is returned for every failed login, whether the email is
// unknown or the password is wrong. The two cases must stay indistinguishable.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "incorrect email or password",
	}
}

// Unauthorized covers every reason a bearer token is rejected: missing,
// malformed, expired, bad signature, or pointing at a user that no longer exists.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "valid authentication required",
	}
}

// StoreUnavailable marks a persistence failure. Callers usually join it with
// the underlying cause:
//
//	return fmt.Errorf("%w: %w", apperror.StoreUnavailable(), err)
//
// so that errors.Is finds both the sentinel and the driver error.
func StoreUnavailable() *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: "service temporarily unavailable",
	}
}
