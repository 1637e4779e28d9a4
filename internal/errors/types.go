// Package errors defines the coded errors returned by lyt registration,
// startup and code generation.
package errors

import (
	"errors"
	"fmt"
)

// LytError defines the base interface for all lyt errors
type LytError interface {
	error
	ErrorCode() ErrorCode
	Context() map[string]any
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	RegistrationErrorCode
	ConfigurationErrorCode
	DependencyErrorCode
	StartupErrorCode
	FileSystemErrorCode
	GenerationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case RegistrationErrorCode:
		return "RegistrationError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case DependencyErrorCode:
		return "DependencyError"
	case StartupErrorCode:
		return "StartupError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case GenerationErrorCode:
		return "GenerationError"
	default:
		return "UnknownError"
	}
}

// BaseError provides a common implementation of the LytError interface
type BaseError struct {
	Code        ErrorCode
	Message     string
	Cause       error
	ContextData map[string]any
	Hints       []string
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Context returns the error context data
func (e *BaseError) Context() map[string]any {
	if e.ContextData == nil {
		return make(map[string]any)
	}
	return e.ContextData
}

// Suggestions returns helpful suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]any)
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...any) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first LytError in err's chain
func CodeOf(err error) ErrorCode {
	var le LytError
	if errors.As(err, &le) {
		return le.ErrorCode()
	}
	return UnknownErrorCode
}

// HasCode reports whether any LytError in err's tree carries code,
// following both single and joined wrapping.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if le, ok := err.(LytError); ok && le.ErrorCode() == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
	}
	return false
}
