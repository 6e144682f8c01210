package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of validation failure
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes. Every scheduling failure maps to one of these; the HTTP
// layer translates them to client-facing statuses.
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrInactiveEntity
	ErrSpecialtyMismatch
	ErrOutsideAvailability
	ErrSchedulingConflict
	ErrInvalidTemporalState
	ErrInvalidChannel
	ErrInsufficientLeadTime
	ErrMalformedInput
	ErrInternal
)

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func InactiveEntity(message string) *AppError {
	return &AppError{Code: ErrInactiveEntity, Message: message}
}

func SpecialtyMismatch(message string) *AppError {
	return &AppError{Code: ErrSpecialtyMismatch, Message: message}
}

func OutsideAvailability(message string) *AppError {
	return &AppError{Code: ErrOutsideAvailability, Message: message}
}

func SchedulingConflict(message string) *AppError {
	return &AppError{Code: ErrSchedulingConflict, Message: message}
}

func InvalidTemporalState(message string) *AppError {
	return &AppError{Code: ErrInvalidTemporalState, Message: message}
}

func InvalidChannel(message string) *AppError {
	return &AppError{Code: ErrInvalidChannel, Message: message}
}

func InsufficientLeadTime(message string) *AppError {
	return &AppError{Code: ErrInsufficientLeadTime, Message: message}
}

func MalformedInput(message string, err error) *AppError {
	return &AppError{Code: ErrMalformedInput, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// CodeOf returns the error code carried by err, or ErrInternal when err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
