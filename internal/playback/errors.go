package playback

import (
	"errors"
	"fmt"
)

// Playback errors.
var (
	// ErrAlreadyPlaying indicates Play was called during playback.
	ErrAlreadyPlaying = errors.New("already playing a macro")

	// ErrEmpty indicates a timeline with no steps.
	ErrEmpty = errors.New("nothing to play")

	// ErrInvalidGoto indicates a Goto whose target is outside the timeline.
	ErrInvalidGoto = errors.New("invalid goto target")

	// ErrJumpLimit indicates playback followed more Gotos than allowed.
	ErrJumpLimit = errors.New("goto limit reached")
)

// GotoError describes a Goto step playback could not follow.
type GotoError struct {
	Seq  int // step holding the Goto
	Line int // its target
	Len  int // number of steps
}

func (e *GotoError) Error() string {
	return fmt.Sprintf("step %d: go to line %d outside 1-%d", e.Seq, e.Line, e.Len)
}

// Is reports whether target matches this error type.
func (e *GotoError) Is(target error) bool {
	return target == ErrInvalidGoto
}

// InjectError wraps a failure of the Injector.
type InjectError struct {
	Seq int
	Err error
}

func (e *InjectError) Error() string {
	return fmt.Sprintf("step %d: inject: %v", e.Seq, e.Err)
}

func (e *InjectError) Unwrap() error {
	return e.Err
}
