package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrAccountInactive is returned when a deactivated account attempts
	// to authenticate. Distinct from ErrUnauthorized: the credential was
	// valid, the account is not.
	ErrAccountInactive = errors.New("account inactive")

	// ErrDependencyUnavailable is the single error kind surfaced by the
	// resilience layer after circuit-open, retries-exhausted, or
	// bulkhead-rejected outcomes. Callers never see transport errors.
	ErrDependencyUnavailable = errors.New("dependency temporarily unavailable")

	// ErrSerialization marks a failure to encode or decode a stage payload.
	// It aborts the enclosing transaction.
	ErrSerialization = errors.New("serialization error")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
