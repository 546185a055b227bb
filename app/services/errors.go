package services

import (
	"errors"
	"fmt"

	"microsocial/app/models"
	"microsocial/app/repositories"
)

// Domain errors
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError represents a validation error with field details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError names the resource that could not be located
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports a uniqueness violation on a field
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Error classification helpers for handlers to map to HTTP status codes
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// invalid converts a validator failure into a ValidationError.
func invalid(err error) error {
	if field, msg, ok := models.Describe(err); ok {
		return NewValidationError(field, msg)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// notFound maps a repository miss to a NotFoundError for resource.
func notFound(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}

// conflict maps repository uniqueness errors to ConflictErrors.
func conflict(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateUsername):
		return &ConflictError{Field: "username", Message: "Username is already taken"}
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return &ConflictError{Field: "email", Message: "Email is already registered"}
	}
	return err
}
