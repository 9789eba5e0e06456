package scheduler

import (
	"errors"
	"fmt"
)

// Common error types for the scheduler service
var (
	// ErrNotFound is the parent of every missing-entity error of the service.
	ErrNotFound = errors.New("not found")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrDeckNotFound indicates that the deck has no scheduling configuration.
	ErrDeckNotFound = fmt.Errorf("%w: deck", ErrNotFound)

	// ErrNoCardsDue indicates that no card can be studied right now, either
	// because nothing is due or because the daily quotas are spent.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrInvalidRating indicates a rating outside again, hard, good, easy.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidTimeSpent indicates a negative review duration.
	ErrInvalidTimeSpent = errors.New("time spent cannot be negative")
)

// ServiceError wraps errors from the scheduler with the operation that failed.
// Consumers can use errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_next", "rate")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
