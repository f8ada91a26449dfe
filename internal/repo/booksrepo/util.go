package booksrepo

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

func newID() string { return uuid.NewString() }

func notFound(id string) error {
	return fmt.Errorf("book with id: %s %w", id, ErrNotFound)
}

// invalid wraps validation errors so callers can match ErrInvalid and still
// reach the per-field validation.Errors.
func invalid(err error) error {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return &ValidationError{Fields: ve}
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string { return "invalid book: " + e.Fields.Error() }

func (e *ValidationError) Unwrap() error { return ErrInvalid }
