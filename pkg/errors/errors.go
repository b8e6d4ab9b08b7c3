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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Recipe loading errors
	ErrRecipeParse  ErrorCode = "RECIPE_PARSE"
	ErrRecipeSchema ErrorCode = "RECIPE_SCHEMA"

	// Path resolution errors
	ErrPathTraversal ErrorCode = "PATH_TRAVERSAL"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrDirCreate     ErrorCode = "DIR_CREATE"

	// Action errors
	ErrClone    ErrorCode = "CLONE"
	ErrDownload ErrorCode = "DOWNLOAD"
	ErrExtract  ErrorCode = "EXTRACT"
	ErrMove     ErrorCode = "MOVE"
	ErrRemove   ErrorCode = "REMOVE"
)

// RecipeError represents a structured error with code and details
type RecipeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RecipeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RecipeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RecipeError) Is(target error) bool {
	var targetErr *RecipeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RecipeError with the given code and message
func New(code ErrorCode, message string) *RecipeError {
	return &RecipeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RecipeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RecipeError {
	return &RecipeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RecipeError
func Wrap(err error, code ErrorCode, message string) *RecipeError {
	if err == nil {
		return nil
	}
	return &RecipeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RecipeError {
	if err == nil {
		return nil
	}
	return &RecipeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RecipeError) WithDetail(key string, value interface{}) *RecipeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Code returns the error code of err, or ErrUnknown if err is not a
// RecipeError.
func Code(err error) ErrorCode {
	var re *RecipeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrUnknown
}

// IsTransient reports whether err represents an external-operation
// failure worth retrying. Structural errors (traversal, schema, bad
// input) are never transient.
func IsTransient(err error) bool {
	switch Code(err) {
	case ErrClone, ErrDownload, ErrExtract:
		return true
	default:
		return false
	}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return Code(err) == code
}
