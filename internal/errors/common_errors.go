package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// ErrorType classifies an AppError. The error handler maps each type onto an
// HTTP status and problem type.
type ErrorType string

const (
	// ErrTypeParsing means the price file was read but its content is unusable.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage means the price file or the load journal could not be opened.
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError is a classified failure from the dataset, journal or config layer.
// Context carries the values worth logging, such as the file path.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext records key on the error and returns it for chaining
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Attrs returns the error type and context as log attributes, keys sorted.
func (e *AppError) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(e.Context)+1)
	attrs = append(attrs, slog.String("error_type", string(e.Type)))
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return attrs
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the type of the outermost AppError in err's chain, or an
// empty type when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
