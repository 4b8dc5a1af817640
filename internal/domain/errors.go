package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRoomNotFound is returned when a room does not exist or was soft-deleted.
var ErrRoomNotFound = errors.New("room not found")

// FieldError describes one invalid input field by its JSON path.
type FieldError struct {
	Field   string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field error was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// StorageError wraps a persistence or object storage failure.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err with the failing operation.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
