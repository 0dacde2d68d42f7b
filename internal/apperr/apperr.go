// Package apperr defines the error taxonomy shared by all services.
// Validation errors reflect the shape of the input, conflict errors reflect
// the current state of the system, so a client may retry a conflict with a
// different slot but should never retry a validation failure unchanged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Reason: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// Status maps an error to the HTTP status code handlers should respond with.
func Status(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
