// SPDX-License-Identifier: AGPL-3.0-only

// Package errors defines the error taxonomy shared by the store, the
// scheduler and the front ends.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies an AppError
type Code string

// Error codes
const (
	CodeInvalidInput          Code = "invalid_input"
	CodeInvalidDeadlineFormat Code = "invalid_deadline_format"
	CodeNotFound              Code = "not_found"
	CodeAlreadyExists         Code = "already_exists"
	CodeDataCorruption        Code = "data_corruption"
	CodeInternal              Code = "internal"
)

// AppError is the error type returned by the application packages
type AppError struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error, if any
func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput reports user input that cannot be accepted
func InvalidInput(message string) error {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// InvalidDeadlineFormat reports a deadline that does not parse as HH:MM
func InvalidDeadlineFormat(input string, cause error) error {
	return &AppError{
		Code:    CodeInvalidDeadlineFormat,
		Message: fmt.Sprintf("invalid deadline %q: expected HH:MM (24-hour)", input),
		Err:     cause,
	}
}

// NotFound reports a missing entity
func NotFound(kind, id string) error {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
}

// AlreadyExists reports a conflicting entity
func AlreadyExists(kind, id string) error {
	return &AppError{Code: CodeAlreadyExists, Message: fmt.Sprintf("%s %q already exists", kind, id)}
}

// DataCorruption reports persisted state that cannot be read back
func DataCorruption(path string, cause error) error {
	return &AppError{
		Code:    CodeDataCorruption,
		Message: fmt.Sprintf("task file %s is corrupt", path),
		Err:     cause,
	}
}

// Internal wraps an unexpected failure
func Internal(err error) error {
	return &AppError{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsInvalidInput reports whether err is an InvalidInput error
func IsInvalidInput(err error) bool {
	return CodeOf(err) == CodeInvalidInput
}

// IsInvalidDeadlineFormat reports whether err is an InvalidDeadlineFormat error
func IsInvalidDeadlineFormat(err error) bool {
	return CodeOf(err) == CodeInvalidDeadlineFormat
}

// IsDataCorruption reports whether err is a DataCorruption error
func IsDataCorruption(err error) bool {
	return CodeOf(err) == CodeDataCorruption
}
