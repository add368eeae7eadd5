// Package services provides the conversion service shared by the CLI and the HTTP API.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/soarbridge/pkg/converter"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/dukex/soarbridge/pkg/schema"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest      = errors.New("invalid request")
	ErrEmptyDocument       = errors.New("document cannot be empty")
	ErrInvalidDirection    = errors.New("invalid conversion direction")
	ErrInvalidStatus       = errors.New("invalid conversion status")
	ErrUndetectableFormat  = errors.New("document is neither a workflow_collections nor a playbook_collections export")
	ErrConversionNotFound  = persistence.ErrConversionNotFound
	ErrPersistenceDisabled = errors.New("conversion history is not configured")
	ErrEventsDisabled      = errors.New("conversion events are not configured")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrUndetectableFormat) ||
		errors.Is(err, converter.ErrFormatMismatch) ||
		errors.Is(err, converter.ErrUndecodableDocument) ||
		errors.Is(err, converter.ErrInvalidDirection) ||
		errors.Is(err, schema.ErrInvalidStructure)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrConversionNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
