package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is the kind of malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrConflict is the kind of a duplicate unique field.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is the kind of bad credentials or a bad token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is the kind of a missing or foreign resource. The two
	// cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
)

// Error is a domain error carrying a client-facing message and its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches the error kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Validation creates an ErrValidation error.
func Validation(message string) error { return &Error{Kind: ErrValidation, Message: message} }

// Conflict creates an ErrConflict error.
func Conflict(message string) error { return &Error{Kind: ErrConflict, Message: message} }

// Unauthorized creates an ErrUnauthorized error.
func Unauthorized(message string) error { return &Error{Kind: ErrUnauthorized, Message: message} }

// NotFound creates an ErrNotFound error.
func NotFound(message string) error { return &Error{Kind: ErrNotFound, Message: message} }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Msg  string `json:"msg"`
	Code string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Msg:  e.Message,
		Code: e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not
// a domain error is reported as an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, domainErr.Message, "VALIDATION_ERROR")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, domainErr.Message, "CONFLICT")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, domainErr.Message, "UNAUTHORIZED")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, domainErr.Message, "NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
