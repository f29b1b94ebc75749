// Package common defines the error taxonomy and shared constants used by the
// server and the CLI client. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"net/http"
)

var (
	// Error kinds. Every APIError carries exactly one of them.
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("conflict")
	ErrorNotFound     = errors.New("not found")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInternal     = errors.New("internal error")

	// Repository-level errors.
	ErrorAlreadyExists = errors.New("already exists")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// APIError is an error that knows how it should be reported to a client.
//
// Message is safe to show to the caller; Cause is kept for logs only and is
// never written to a response.
type APIError struct {
	Kind    error
	Message string
	Errors  []string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause so errors.Is can reach sentinel errors
// of lower layers.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind, so errors.Is(err, ErrorUnauthorized) holds for
// any auth failure regardless of its message.
func (e *APIError) Is(target error) bool {
	return e.Kind == target
}

// StatusCode maps the error kind to an HTTP status code.
func (e *APIError) StatusCode() int {
	return StatusCode(e.Kind)
}

// StatusCode maps an error kind to an HTTP status code. Unknown kinds are
// reported as 500.
func StatusCode(kind error) int {
	switch kind {
	case ErrorValidation:
		return http.StatusBadRequest
	case ErrorConflict:
		return http.StatusConflict
	case ErrorNotFound:
		return http.StatusNotFound
	case ErrorUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(msg string, details ...string) *APIError {
	return &APIError{Kind: ErrorValidation, Message: msg, Errors: details}
}

func NewConflictError(msg string) *APIError {
	return &APIError{Kind: ErrorConflict, Message: msg}
}

func NewNotFoundError(msg string) *APIError {
	return &APIError{Kind: ErrorNotFound, Message: msg}
}

// NewAuthError reports a 401. cause may be nil.
func NewAuthError(msg string, cause error) *APIError {
	return &APIError{Kind: ErrorUnauthorized, Message: msg, Cause: cause}
}

// NewInternalError reports a 500 and keeps the cause for logging.
func NewInternalError(msg string, cause error) *APIError {
	return &APIError{Kind: ErrorInternal, Message: msg, Cause: cause}
}
