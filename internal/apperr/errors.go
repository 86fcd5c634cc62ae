// Package apperr defines the typed errors services raise for expected
// failures. Handlers map them onto the HTTP response envelope; anything
// that is not an *Error falls through to a generic 500.
package apperr

import (
	"errors"
	"net/http"
)

// Error is an expected business failure carrying its HTTP status.
type Error struct {
	Status  int
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest reports malformed input or a failed business precondition.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized reports an authentication failure.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Conflict reports a duplicate resource or a revoked token.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// NotFound reports an absent account or resource.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// WithDetails attaches structured detail to the error.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Status: e.Status, Message: e.Message, Details: details}
}

// From extracts an *Error from err's chain, or nil.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
