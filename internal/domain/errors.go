package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a structurally invalid search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUpstream signals a failing external dependency.
	ErrUpstream = errors.New("upstream dependency error")
	// ErrTimeout signals that the request deadline expired.
	ErrTimeout = errors.New("request timed out")
)

// KeyPrefix is the default key prefix for cache entries.
const KeyPrefix = "lsearch:"

// ValidationError describes which request field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidRequest.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// NewValidationError creates a validation error for a request field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
