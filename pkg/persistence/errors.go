// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrConversionNotFound indicates a conversion record was not found by the given identifier.
	ErrConversionNotFound = errors.New("conversion not found")

	// ErrInvalidConversion indicates a record that cannot be stored, such as one without an identifier.
	ErrInvalidConversion = errors.New("invalid conversion record")
)

// ConversionError wraps conversion record errors with additional context.
type ConversionError struct {
	Op           string // Operation being performed (e.g., "ConversionByID", "Save", "Delete")
	ConversionID string
	Err          error
	Message      string
}

func (e *ConversionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for conversion %s: %s (%v)", e.Op, e.ConversionID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for conversion %s: %v", e.Op, e.ConversionID, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for conversion errors.
func (e *ConversionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConversionError creates a new conversion error with context.
func NewConversionError(op, conversionID string, err error) *ConversionError {
	return &ConversionError{
		Op:           op,
		ConversionID: conversionID,
		Err:          err,
	}
}

// IsConversionNotFound checks if an error indicates a conversion record was not found.
func IsConversionNotFound(err error) bool {
	return errors.Is(err, ErrConversionNotFound)
}

// IsInvalidConversion checks if an error indicates a record was rejected.
func IsInvalidConversion(err error) bool {
	return errors.Is(err, ErrInvalidConversion)
}
