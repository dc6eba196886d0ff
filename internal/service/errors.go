package service

import "fmt"

// CreationServiceError is a custom error type for creation service errors.
type CreationServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CreationServiceError.
func (e *CreationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("creation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("creation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CreationServiceError) Unwrap() error {
	return e.Err
}

// NewCreationServiceError creates a new CreationServiceError.
func NewCreationServiceError(operation, message string, err error) *CreationServiceError {
	return &CreationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
