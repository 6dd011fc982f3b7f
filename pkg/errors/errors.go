// Package errors provides structured error types for blockflow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, HTTP and MCP hosts
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The core taxonomy has four codes:
//   - NOT_FOUND: an operation referenced an id absent from the store
//   - INVALID_STATE: the store shape forbids the operation (second root, zero or
//     multiple roots on tree conversion)
//   - INVALID_ARGUMENT: a parameter is out of range (non-positive zoom or node size)
//   - HOST_HOOK: a host callback (render, onRemove, onUpdate, onZoom) failed
//
// A declined validation hook is not an error and never produces one.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "block %q not found", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing block
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeHostHook, origErr, "render block %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Core taxonomy
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeInvalidState    Code = "INVALID_STATE"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeHostHook        Code = "HOST_HOOK"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidName   Code = "INVALID_NAME"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// NotFound is shorthand for New(ErrCodeNotFound, ...).
func NotFound(format string, args ...any) *Error {
	return New(ErrCodeNotFound, format, args...)
}

// InvalidState is shorthand for New(ErrCodeInvalidState, ...).
func InvalidState(format string, args ...any) *Error {
	return New(ErrCodeInvalidState, format, args...)
}

// InvalidArgument is shorthand for New(ErrCodeInvalidArgument, ...).
func InvalidArgument(format string, args ...any) *Error {
	return New(ErrCodeInvalidArgument, format, args...)
}

// HostHook wraps a failure raised by a host callback.
func HostHook(cause error, hook string) *Error {
	return Wrap(ErrCodeHostHook, cause, "%s hook failed", hook)
}
