package codec

import (
	"errors"
	"fmt"

	"github.com/dshills/macrokit/internal/macro/step"
)

// Codec errors.
var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrDecodeMismatch matches every *DecodeMismatch.
	ErrDecodeMismatch = errors.New("description does not match kind")
)

// ValidationError reports user-entered step fields that cannot produce a
// step. Message is suitable for showing to the user as is.
type ValidationError struct {
	// Field names the offending form field ("min", "max", "key", "button",
	// "x", "y", "line" or "kind").
	Field string
	// Message describes what is wrong.
	Message string
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DecodeMismatch reports a description that does not have the shape its
// kind calls for. The fields named in Fields were left blank.
type DecodeMismatch struct {
	Kind        step.Kind
	Description string
	Fields      []string
}

// Error implements the error interface.
func (e *DecodeMismatch) Error() string {
	return fmt.Sprintf("cannot decode %v description %q (fields %v left blank)", e.Kind, e.Description, e.Fields)
}

// Is reports whether target is ErrDecodeMismatch.
func (e *DecodeMismatch) Is(target error) bool {
	return target == ErrDecodeMismatch
}
