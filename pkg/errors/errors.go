package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Subplugin loading errors
	ErrLoadFailure     ErrorCode = "LOAD_FAILURE"
	ErrMalformedModule ErrorCode = "MALFORMED_MODULE"
)

// RegistryError represents a structured error with code and details
type RegistryError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RegistryError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RegistryError) Is(target error) bool {
	var targetErr *RegistryError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RegistryError with the given code and message
func New(code ErrorCode, message string) *RegistryError {
	return &RegistryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RegistryError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RegistryError {
	return &RegistryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RegistryError
func Wrap(err error, code ErrorCode, message string) *RegistryError {
	if err == nil {
		return nil
	}
	return &RegistryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RegistryError {
	if err == nil {
		return nil
	}
	return &RegistryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RegistryError) WithDetail(key string, value interface{}) *RegistryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RegistryError) WithDetails(details map[string]interface{}) *RegistryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var regErr *RegistryError
	if errors.As(err, &regErr) {
		return regErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RegistryError
func GetErrorCode(err error) ErrorCode {
	var regErr *RegistryError
	if errors.As(err, &regErr) {
		return regErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RegistryError
func GetErrorDetails(err error) map[string]interface{} {
	var regErr *RegistryError
	if errors.As(err, &regErr) {
		return regErr.Details
	}
	return nil
}
