package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrFormatMismatch is returned when a document's top-level type does not match the
	// requested direction. It is fatal: no output is produced.
	ErrFormatMismatch = errors.New("document format does not match conversion direction")

	ErrUndecodableDocument = errors.New("document could not be decoded")
	ErrInvalidDirection    = errors.New("unknown conversion direction")
)

// FormatError describes a rejected document.
type FormatError struct {
	Op       string
	Expected string
	Got      string
	Message  string
}

func (e *FormatError) Error() string {
	return e.Message
}

func (e *FormatError) Unwrap() error {
	return ErrFormatMismatch
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormatMismatch
}

func newFormatError(op, expected, got, message string) *FormatError {
	return &FormatError{Op: op, Expected: expected, Got: got, Message: message}
}

// IsFormatMismatch checks if an error reports a discriminator mismatch.
func IsFormatMismatch(err error) bool {
	return errors.Is(err, ErrFormatMismatch)
}

// IsUndecodableDocument checks if an error reports undecodable input.
func IsUndecodableDocument(err error) bool {
	return errors.Is(err, ErrUndecodableDocument)
}

func undecodableDocument(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUndecodableDocument, err)
}
