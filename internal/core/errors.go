package core

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below via errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrFetch      = errors.New("fetch failed")
	ErrStorage    = errors.New("storage failure")
)

var (
	ErrInvalidAmount    = &ValidationError{Field: "amount", Reason: "must be a non-negative number"}
	ErrEmptyDescription = &ValidationError{Field: "description", Reason: "cannot be empty"}
	ErrInvalidKind      = &ValidationError{Field: "kind", Reason: "must be one of Income, Expense, Shopping"}
	ErrEmptyName        = &ValidationError{Field: "name", Reason: "cannot be empty"}
)

// ValidationError reports a missing or malformed field on an add operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a delete or update against a missing entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FetchError wraps a failure of the external wishlist source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError wraps an underlying persistence failure. The operation that
// produced it has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
