package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents specific error types for structured handling
type ErrorCode string

const (
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrReadFailed   ErrorCode = "READ_ERROR"
	ErrTemplate     ErrorCode = "TEMPLATE_ERROR"
	ErrWriteFailed  ErrorCode = "WRITE_ERROR"
	ErrInvalidInput ErrorCode = "INPUT_ERROR"
	ErrExportFailed ErrorCode = "EXPORT_ERROR"
	ErrUnknown      ErrorCode = "UNKNOWN"
)

// ConversionError is a structured error carried from the batch path up to
// the HTTP form or the CLI's JSON output
type ConversionError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	File    string    `json:"file,omitempty"`
	Details string    `json:"details,omitempty"`

	cause error
}

func (e *ConversionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause, if any
func (e *ConversionError) Unwrap() error {
	return e.cause
}

// ToJSON returns the error as a JSON string
func (e *ConversionError) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// New creates a new ConversionError
func New(code ErrorCode, message string) *ConversionError {
	return &ConversionError{
		Code:    code,
		Message: message,
	}
}

// NewWithFile creates an error with file context
func NewWithFile(code ErrorCode, message, file string) *ConversionError {
	return &ConversionError{
		Code:    code,
		Message: message,
		File:    file,
	}
}

// NewWithDetails creates an error with additional details
func NewWithDetails(code ErrorCode, message, file, details string) *ConversionError {
	return &ConversionError{
		Code:    code,
		Message: message,
		File:    file,
		Details: details,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *ConversionError {
	return &ConversionError{
		Code:    code,
		Message: message,
		Details: err.Error(),
		cause:   err,
	}
}

// WrapWithFile wraps an existing error and records the file it concerns
func WrapWithFile(err error, code ErrorCode, message, file string) *ConversionError {
	e := Wrap(err, code, message)
	e.File = file
	return e
}

// CodeOf returns the code of the first ConversionError in err's chain,
// or ErrUnknown when there is none
func CodeOf(err error) ErrorCode {
	var ce *ConversionError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ErrUnknown
}

// As converts any error into a ConversionError, keeping existing codes
func As(err error, fallback ErrorCode, message string) *ConversionError {
	var ce *ConversionError
	if stderrors.As(err, &ce) {
		return ce
	}
	return Wrap(err, fallback, message)
}
