// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation/schema errors (100-199): Invalid parameters, schema violations, bad step names
//   - Data/store errors (200-299): Data not found, storage I/O failures, query failures
//   - Context errors (300-399): Missing prerequisite artifacts, context invariant violations
//   - Strategy component errors (400-499): User-supplied component failures, bad parameter schemas
//   - Engine errors (500-599): Step dispatch failures wrapping an external collaborator's error
//   - Simulator errors (600-699): Order, fill, and position derivation errors
//   - Exchange-client errors (700-799): Order submission/fill/position fetch failures
//   - Callback errors (800-899): CLI/callback execution failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeDataNotFound, "data not found for symbol %s", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// SchemaViolationReason identifies why a table failed validation, per the
// closed set of reasons a validator may report.
type SchemaViolationReason string

const (
	ReasonMissingColumn   SchemaViolationReason = "MissingColumn"
	ReasonWrongType       SchemaViolationReason = "WrongType"
	ReasonForbiddenNull   SchemaViolationReason = "ForbiddenNull"
	ReasonDisallowedValue SchemaViolationReason = "DisallowedValue"
)

// SchemaViolationError represents a failed validation of a tabular artifact
// against its declared column/type contract. It is always
// surfaced to the caller unchanged and never retried.
type SchemaViolationError struct {
	Table    string
	Reason   SchemaViolationReason
	Column   string
	Expected string
	Actual   string
	Values   []string
	Message  string
}

// NewSchemaViolation creates a SchemaViolationError for the given table/reason/column.
func NewSchemaViolation(table string, reason SchemaViolationReason, column, message string) *SchemaViolationError {
	return &SchemaViolationError{
		Table:   table,
		Reason:  reason,
		Column:  column,
		Message: message,
	}
}

// Error implements the error interface.
func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on table %s: %s (column=%s): %s", e.Table, e.Reason, e.Column, e.Message)
}

// IsSchemaViolation checks if an error is a SchemaViolationError.
// It uses errors.As to check the error chain.
func IsSchemaViolation(err error) bool {
	var violation *SchemaViolationError

	return errors.As(err, &violation)
}
