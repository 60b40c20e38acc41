package consolidate

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedEvent matches every *EventError.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrUnexpectedFailure matches every *UnexpectedFailure.
	ErrUnexpectedFailure = errors.New("consolidation failed")
)

// EventError records a raw event whose details could not be fully resolved.
// The event still produced a step, with placeholder text for Field.
type EventError struct {
	Index int
	Event RawEvent
	Field string
	// Reason says what was wrong with the field.
	Reason string
}

// Error implements the error interface.
func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%s %q): %s %s", e.Index, e.Event.Kind, e.Event.Details, e.Field, e.Reason)
}

// Is reports whether target is ErrMalformedEvent.
func (e *EventError) Is(target error) bool {
	return target == ErrMalformedEvent
}

// UnexpectedFailure reports a pass that stopped early. Steps emitted before
// the failure are still returned.
type UnexpectedFailure struct {
	// Processed is the number of events handled before the failure.
	Processed int
	// Total is the number of events supplied.
	Total int
	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *UnexpectedFailure) Error() string {
	return fmt.Sprintf("consolidation stopped after %d of %d events: %v", e.Processed, e.Total, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *UnexpectedFailure) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is reports whether target is ErrUnexpectedFailure.
func (e *UnexpectedFailure) Is(target error) bool {
	return target == ErrUnexpectedFailure
}
