// Package core provides the main Reverie client and memory management functionality.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory or room was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrLLMOperation indicates that an LLM operation failed.
	ErrLLMOperation = errors.New("llm operation failed")
)

// CoreError wraps errors with operation context.
//
// It provides additional context about which operation failed,
// making error messages more informative for debugging.
//
// Example:
//
//	err := &CoreError{
//	    Op:  "Capture",
//	    Err: ErrInvalidInput,
//	}
//	// Error() returns: "reverie: Capture: invalid input"
type CoreError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "reverie: <Op>: <Err>"
func (e *CoreError) Error() string {
	return fmt.Sprintf("reverie: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with CoreError.
func (e *CoreError) Unwrap() error {
	return e.Err
}

// NewCoreError creates a new CoreError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewCoreError("Capture", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g., "Capture", "Home", "CreateRoom")
//   - err: The underlying error to wrap
//
// Returns a CoreError, or nil if err is nil.
func NewCoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CoreError{
		Op:  op,
		Err: err,
	}
}
