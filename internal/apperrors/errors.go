// Package apperrors provides structured errors with HTTP status mapping and a
// stable JSON response shape.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an error, used for status mapping, metrics
// and the "type" field of responses.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeConflict indicates a uniqueness conflict (HTTP 400, matching the
	// portal's existing clients)
	TypeConflict ErrorType = "conflict"
	// TypeUnauthenticated indicates a missing or dead session (HTTP 401)
	TypeUnauthenticated ErrorType = "unauthenticated"
	// TypeInvalidCredentials indicates a failed login (HTTP 401)
	TypeInvalidCredentials ErrorType = "invalid_credentials"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeRateLimited indicates too many requests (HTTP 429)
	TypeRateLimited ErrorType = "rate_limited"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// InternalMessage is the only text clients see for internal errors.
const InternalMessage = "Internal server error"

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Fields  []FieldError
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation, TypeConflict:
		return http.StatusBadRequest
	case TypeUnauthenticated, TypeInvalidCredentials:
		return http.StatusUnauthorized
	case TypeNotFound:
		return http.StatusNotFound
	case TypeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message, Context: make(map[string]any)}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string, fields ...FieldError) *Error {
	e := newError(TypeValidation, message)
	e.Fields = fields
	return e
}

// ConflictError creates a new conflict error (HTTP 400).
func ConflictError(message string) *Error {
	return newError(TypeConflict, message)
}

// UnauthenticatedError creates a new unauthenticated error (HTTP 401).
func UnauthenticatedError(message string) *Error {
	return newError(TypeUnauthenticated, message)
}

// InvalidCredentialsError creates the generic failed-login error (HTTP 401).
func InvalidCredentialsError() *Error {
	return newError(TypeInvalidCredentials, "Invalid username or password")
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message)
}

// RateLimitedError creates a new rate-limit error (HTTP 429).
func RateLimitedError() *Error {
	return newError(TypeRateLimited, "Too many requests, please try again later")
}

// InternalError creates a new internal error (HTTP 500). The message is for
// logs only; clients always see InternalMessage.
func InternalError(message string, cause error) *Error {
	e := newError(TypeInternal, message)
	e.Cause = cause
	return e
}

// WithField adds a context field for logging (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Message string       `json:"message"`
	Type    ErrorType    `json:"type"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
// Internal details never reach the client.
func (e *Error) ToResponse() ErrorResponse {
	if e.Type == TypeInternal {
		return ErrorResponse{Message: InternalMessage, Type: TypeInternal}
	}
	return ErrorResponse{Message: e.Message, Type: e.Type, Errors: e.Fields}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("unhandled error", err)
}
