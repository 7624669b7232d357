// Package apperror defines the error kinds every layer of the service agrees on.
//
// ERROR KINDS:
//   - ErrValidation   the request is malformed (missing field, too long, bad format)
//   - ErrDomain       the request is well-formed but breaks a business rule
//   - ErrConflict     the record would collide with an existing one (duplicate email)
//   - ErrUnauthorized credentials or bearer token were rejected
//   - ErrNotFound     a lookup came back empty
//
// Anything that does not wrap one of these is an internal failure and is
// reported to clients as a generic 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrDomain       = errors.New("domain rule violated")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError describes one offending input field.
// Type is a short machine-readable tag such as "missing" or "string_too_long".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type AppError struct {
	Err     error        // kind sentinel
	Message string       // human-readable message
	Field   string       // optional: field causing the error
	Details []FieldError // optional: per-field breakdown for shape errors
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

// ValidationFailed reports a single malformed field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidFields reports every malformed field found in one request.
func InvalidFields(details []FieldError) *AppError {
	msg := "validation failed"
	if len(details) > 0 {
		msg = details[0].Field + ": " + details[0].Message
	}
	return &AppError{
		Err:     ErrValidation,
		Message: msg,
		Details: details,
	}
}

// Domain reports a business-rule violation. The message is shown to the client verbatim.
func Domain(message string) *AppError {
	return &AppError{
		Err:     ErrDomain,
		Message: message,
	}
}

// Domainf is Domain with formatting.
func Domainf(format string, args ...any) *AppError {
	return Domain(fmt.Sprintf(format, args...))
}

func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns an AppError that HTTP handlers map to 401 with a Bearer challenge.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
