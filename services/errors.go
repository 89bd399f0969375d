package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeEmbedding  ErrorType = "embedding"
	ErrorTypeRetrieval  ErrorType = "retrieval"
	ErrorTypeGeneration ErrorType = "generation"
	ErrorTypeIngestion  ErrorType = "ingestion"
	ErrorTypeInternal   ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation errors
	ErrInvalidRequest = NewDomainError(ErrorTypeValidation, "invalid request", nil)
	ErrEmptyQuestion  = NewDomainError(ErrorTypeValidation, "question cannot be empty", nil)

	// ErrNoRelevantContext signals that the similarity search succeeded but
	// returned no match above the threshold. This is a legitimate outcome,
	// never to be conflated with a store or embedding failure.
	ErrNoRelevantContext = NewDomainError(ErrorTypeNotFound, "no relevant documents found", nil)

	// Collaborator errors
	ErrEmbeddingFailed  = NewDomainError(ErrorTypeEmbedding, "embedding request failed", nil)
	ErrSearchFailed     = NewDomainError(ErrorTypeRetrieval, "similarity search failed", nil)
	ErrLookupFailed     = NewDomainError(ErrorTypeRetrieval, "record lookup failed", nil)
	ErrGenerationFailed = NewDomainError(ErrorTypeGeneration, "generation request failed", nil)

	// ErrStreamInterrupted marks a generation failure after streaming began;
	// headers are committed at that point, so the stream is terminated
	// abruptly instead of reporting a status code.
	ErrStreamInterrupted = NewDomainError(ErrorTypeGeneration, "stream interrupted", nil)

	// Ingestion errors
	ErrIngestionFailed = NewDomainError(ErrorTypeIngestion, "ingestion run failed", nil)

	// Internal errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsEmbeddingError checks if an error is an embedding collaborator error
func IsEmbeddingError(err error) bool {
	return GetErrorType(err) == ErrorTypeEmbedding
}

// IsRetrievalError checks if an error is a vector-store error
func IsRetrievalError(err error) bool {
	return GetErrorType(err) == ErrorTypeRetrieval
}

// IsGenerationError checks if an error is a generation collaborator error
func IsGenerationError(err error) bool {
	return GetErrorType(err) == ErrorTypeGeneration
}

// IsIngestionError checks if an error is an ingestion error
func IsIngestionError(err error) bool {
	return GetErrorType(err) == ErrorTypeIngestion
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
