package lyt

import (
	"errors"
	"fmt"
	"net/http"
)

// HttpError is an error carrying the HTTP status it should be rendered with
type HttpError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Internal   error  `json:"-"`
}

// Error implements the error interface
func (e *HttpError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTP %d: %s: %v", e.StatusCode, e.Message, e.Internal)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the internal cause, if any
func (e *HttpError) Unwrap() error {
	return e.Internal
}

// WithInternal attaches the underlying cause
func (e *HttpError) WithInternal(err error) *HttpError {
	e.Internal = err
	return e
}

// NewHttpError creates a new HttpError with the given status code and message.
// An empty message defaults to the status text.
func NewHttpError(statusCode int, message string) *HttpError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrNextRoute is returned by a handler that declines a request. Adapters
// that can continue routing hand the request to the next matching route;
// the others render it as a 404. Do not modify it.
var ErrNextRoute = &HttpError{StatusCode: http.StatusNotFound, Message: http.StatusText(http.StatusNotFound)}

// NewHttpErrorWithDetails creates a new HttpError with additional details
func NewHttpErrorWithDetails(statusCode int, message string, details any) *HttpError {
	e := NewHttpError(statusCode, message)
	e.Details = details
	return e
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

// ErrUnauthorized creates a 401 Unauthorized error
func ErrUnauthorized(message string) *HttpError {
	return NewHttpError(http.StatusUnauthorized, message)
}

// ErrForbidden creates a 403 Forbidden error
func ErrForbidden(message string) *HttpError {
	return NewHttpError(http.StatusForbidden, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message)
}

// ErrTooManyRequests creates a 429 Too Many Requests error
func ErrTooManyRequests(message string) *HttpError {
	return NewHttpError(http.StatusTooManyRequests, message)
}

// ErrInternalServerError creates a 500 Internal Server Error
func ErrInternalServerError(message string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message)
}

// StatusOf returns the status an error should be rendered with
func StatusOf(err error) int {
	var he *HttpError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return http.StatusInternalServerError
}

// ErrorBody returns the JSON body rendered for an unhandled error.
// Non-HTTP errors are reported without their message.
func ErrorBody(err error) *HttpError {
	var he *HttpError
	if errors.As(err, &he) {
		return he
	}
	return NewHttpError(http.StatusInternalServerError, "")
}
