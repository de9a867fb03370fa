package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by services, repositories and the HTTP layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate value")

	// ErrMissingDatabaseURI is a configuration error: no connection URI was
	// configured. It is never retried.
	ErrMissingDatabaseURI = errors.New("database connection URI is not configured (set DATABASE_URL or MONGODB_URI)")
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a candidate record fails normalization or
// validation. It never reaches storage.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// WithCause attaches the underlying error, reachable through errors.Unwrap.
func (e *ValidationError) WithCause(err error) *ValidationError {
	e.cause = err
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrInvalidInput, e.cause}
	}
	return []error{ErrInvalidInput}
}

// Map returns field -> message, keeping the first message for a field.
func (e *ValidationError) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Message
		}
	}
	return m
}

// ConflictError is a uniqueness-constraint violation reported by storage.
type ConflictError struct {
	Field string
	Value string
	cause error
}

// NewConflictError returns a ConflictError wrapping the driver error.
func NewConflictError(field, value string, cause error) *ConflictError {
	return &ConflictError{Field: field, Value: value, cause: cause}
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("duplicate value for %s", e.Field)
	}
	return fmt.Sprintf("duplicate value for %s: %q", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrDuplicate, e.cause}
	}
	return []error{ErrDuplicate}
}

// ReferenceError is returned when a booking references an event that does
// not exist. A failed lookup is reported as a ValidationError instead.
type ReferenceError struct {
	Field string
	ID    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: referenced event %q does not exist", e.Field, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrNotFound }

// ConnectivityError is returned when the store cannot be reached. Callers
// may retry; the connection cache has already reset its in-flight state.
type ConnectivityError struct {
	Hint  string
	cause error
}

// NewConnectivityError wraps cause with a diagnostic hint.
func NewConnectivityError(hint string, cause error) *ConnectivityError {
	return &ConnectivityError{Hint: hint, cause: cause}
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("database connection failed: %s: %v", e.Hint, e.cause)
}

func (e *ConnectivityError) Unwrap() error { return e.cause }
