package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a passforge error code.
type ErrorCode string

const (
	ErrValidation         ErrorCode = "VALIDATION_ERROR"    // 400
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrRange              ErrorCode = "RANGE_ERROR"         // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrNameAlreadyExists  ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrEmptyPool          ErrorCode = "EMPTY_POOL"          // 422
	ErrInsufficientLength ErrorCode = "INSUFFICIENT_LENGTH" // 422
	ErrInvalidArgument    ErrorCode = "INVALID_ARGUMENT"    // 500 (caller defect)
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// PassError represents a structured error with code, status, and details.
type PassError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PassError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for generator options that violate a constraint.
// constraint names the violated rule (e.g. "length", "classes").
func NewValidation(constraint, msg string) *PassError {
	return &PassError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
		Details: map[string]any{"constraint": constraint},
	}
}

// NewInvalidRequest creates a 400 error for malformed request parameters.
func NewInvalidRequest(msg string) *PassError {
	return &PassError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewRange creates a 400 error for a batch count outside [min, max].
func NewRange(min, max, actual int) *PassError {
	return &PassError{
		Code:    ErrRange,
		Status:  400,
		Message: fmt.Sprintf("count must be between %d and %d, got %d", min, max, actual),
		Details: map[string]any{"min": min, "max": max, "actual": actual},
	}
}

// NewNotFound creates a 404 error for when a preset cannot be found.
func NewNotFound(identifier string) *PassError {
	return &PassError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("preset not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *PassError {
	return &PassError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(operation string) *PassError {
	return &PassError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewNameAlreadyExists creates a 409 error for preset name collisions.
func NewNameAlreadyExists(name string) *PassError {
	return &PassError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("preset with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewEmptyPool creates a 422 error when no characters remain after exclusions.
func NewEmptyPool(msg string) *PassError {
	return &PassError{
		Code:    ErrEmptyPool,
		Status:  422,
		Message: msg,
	}
}

// NewInsufficientLength creates a 422 error when the mandatory class
// representatives do not fit in the requested length.
func NewInsufficientLength(required, length int) *PassError {
	return &PassError{
		Code:    ErrInsufficientLength,
		Status:  422,
		Message: fmt.Sprintf("length %d is too short to include %d required character types", length, required),
		Details: map[string]any{"required": required, "length": length},
	}
}

// NewInvalidArgument creates an error for a programming defect in the caller,
// such as a non-positive bound passed to the random primitive.
func NewInvalidArgument(msg string) *PassError {
	return &PassError{
		Code:    ErrInvalidArgument,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PassError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PassError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a PassError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PassError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// CodeOf returns the error code of err, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var pErr *PassError
	if stderrors.As(err, &pErr) {
		return pErr.Code
	}
	return ErrInternal
}
