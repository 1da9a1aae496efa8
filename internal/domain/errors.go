package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction signals that the language model could not produce usable
	// query elements. Callers degrade to pure semantic search instead of failing.
	ErrExtraction = errors.New("query extraction failed")
	// ErrMalformedExtraction signals unparsable model output. Eligible for one
	// corrective retry before degrading.
	ErrMalformedExtraction = errors.New("malformed extraction output")
	// ErrValidation signals conflicting or out-of-range query constraints.
	ErrValidation = errors.New("invalid query constraints")
	// ErrRetrieval signals an embedding or vector store failure during search.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrStoreUnavailable signals that the vector store cannot be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)

// ValidationError wraps ErrValidation with the offending field or field pair.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
