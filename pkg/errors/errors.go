// Package errors provides structured error types for graphbridge.
//
// Every failure surfaced by the graph core carries a machine-readable [Code]
// so callers (the CLI, the HTTP API, an editor view) can tell an addressing
// problem from a missing node or a malformed body without string matching.
//
// # Error Codes
//
// Codes are grouped into categories, reported by [CategoryOf]:
//   - addressing: EMPTY_GRAPH_ID, DEFINITION_NOT_FOUND
//   - node lookup: NODE_NOT_FOUND, DUPLICATE_NODE_ID
//   - structural: STRUCTURAL
//   - input: PARSE_ERROR, INVALID_INPUT, INVALID_FORMAT, INVALID_PATH
//   - storage: MODULE_NOT_FOUND, STORAGE
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "node by ID %s was not found", id)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // Handle missing node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Addressing errors
	ErrCodeEmptyGraphID       Code = "EMPTY_GRAPH_ID"
	ErrCodeDefinitionNotFound Code = "DEFINITION_NOT_FOUND"

	// Node lookup errors
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"
	ErrCodeDuplicateNodeID Code = "DUPLICATE_NODE_ID"

	// Body shape errors
	ErrCodeStructural Code = "STRUCTURAL"

	// Input validation errors
	ErrCodeParse         Code = "PARSE_ERROR"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Storage errors
	ErrCodeModuleNotFound Code = "MODULE_NOT_FOUND"
	ErrCodeStorage        Code = "STORAGE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Category groups related error codes.
type Category string

// Error categories.
const (
	CategoryAddressing Category = "addressing"
	CategoryNodeLookup Category = "node_lookup"
	CategoryStructural Category = "structural"
	CategoryInput      Category = "input"
	CategoryStorage    Category = "storage"
	CategoryInternal   Category = "internal"
)

var categories = map[Code]Category{
	ErrCodeEmptyGraphID:       CategoryAddressing,
	ErrCodeDefinitionNotFound: CategoryAddressing,
	ErrCodeNodeNotFound:       CategoryNodeLookup,
	ErrCodeDuplicateNodeID:    CategoryNodeLookup,
	ErrCodeStructural:         CategoryStructural,
	ErrCodeParse:              CategoryInput,
	ErrCodeInvalidInput:       CategoryInput,
	ErrCodeInvalidFormat:      CategoryInput,
	ErrCodeInvalidPath:        CategoryInput,
	ErrCodeModuleNotFound:     CategoryStorage,
	ErrCodeStorage:            CategoryStorage,
}

// Category returns the category the code belongs to.
// Unknown codes are reported as internal.
func (c Code) Category() Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryInternal
}

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

// CategoryOf returns the category of err's code.
// Errors without a code are internal.
func CategoryOf(err error) Category {
	return GetCode(err).Category()
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
