package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Typed errors below match
// these through errors.Is.
var (
	// ErrValidation is returned when caller input is malformed, such as an
	// unknown rating, a negative target count or weights that do not sum to 1.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition is returned when a persisted state violates an invariant
	// that the engine could never have produced. It indicates upstream
	// corruption rather than a user mistake.
	ErrPrecondition = errors.New("precondition violated")
)

// ValidationError describes rejected caller input.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PreconditionError describes a state that breaks a scheduling invariant.
type PreconditionError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrPrecondition, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrPrecondition, e.Field, e.Message)
}

// Is reports whether target is ErrPrecondition.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// NewPreconditionError creates a PreconditionError for the given field.
func NewPreconditionError(field, message string) *PreconditionError {
	return &PreconditionError{Field: field, Message: message}
}

// IsValidationError reports whether err is or wraps a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsPreconditionError reports whether err is or wraps a precondition error.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPrecondition)
}
