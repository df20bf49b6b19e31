package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedEncoding signals bytes that are not valid UTF-8 (or a sort key with
	// unpaired surrogates). Seen only when persisted index data is corrupt.
	ErrMalformedEncoding = errors.New("malformed encoding")
	// ErrUnsupportedSort signals a sort on a field without doc values.
	ErrUnsupportedSort = errors.New("field not sortable")
	// ErrUnsupportedAccess signals a value accessor on a field without doc values.
	ErrUnsupportedAccess = errors.New("field has no value accessor")
	// ErrCardinalityViolation signals a second single-value column entry for one document.
	ErrCardinalityViolation = errors.New("single-valued field has multiple values")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrUnknownFieldType signals a field type with no registered codec.
	ErrUnknownFieldType = errors.New("unknown field type")
	// ErrFieldNotFound signals a field missing from the schema.
	ErrFieldNotFound = errors.New("field not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
)

// FieldError wraps a sentinel with the name of the field it concerns.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError creates a FieldError for the given field and sentinel.
func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
