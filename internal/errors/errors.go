// Package errors defines the error taxonomy shared by the progression core,
// the repository and the service layer.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrNotFound          = errors.New("not found")
	ErrInconsistentState = errors.New("inconsistent state")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// ParamError reports which input failed validation and why.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// Invalid creates a ParamError for field.
func Invalid(field, format string, args ...any) *ParamError {
	return &ParamError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the kind and id of the missing record.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Inconsistent wraps ErrInconsistentState with a description.
func Inconsistent(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInconsistentState)
}
