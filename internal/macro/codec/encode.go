package codec

import (
	"fmt"

	"github.com/dshills/macrokit/internal/macro/step"
)

// Encode renders the canonical description of s from its structured
// fields. The Description field of s is ignored.
func Encode(s step.Step) string {
	switch s.Kind {
	case step.KindDelay:
		if s.Delay.Random {
			return fmt.Sprintf("Delay from %d to %d ms.", s.Delay.Min, s.Delay.Max)
		}
		return fmt.Sprintf("Delay %d ms.", s.Delay.Min)

	case step.KindKeyPress:
		return "Press " + s.Key
	case step.KindKeyRelease:
		return "Release " + s.Key

	case step.KindMouseClick, step.KindMouseRelease:
		word := "Click"
		if s.Kind == step.KindMouseRelease {
			word = "Release"
		}
		desc := fmt.Sprintf("%s %s Mouse", word, s.Button.Name)
		if s.Button.HasAt {
			desc += fmt.Sprintf(" at (%d, %d)", s.Button.At.X, s.Button.At.Y)
		}
		return desc

	case step.KindMouseMove:
		return fmt.Sprintf("Move cursor %d %d (absolute)", s.Point.X, s.Point.Y)

	case step.KindGoto:
		if s.Line <= 0 {
			return "Go to line #?"
		}
		return fmt.Sprintf("Go to line #%d", s.Line)

	default:
		return fmt.Sprintf("%s: %s", s.Other.Tag, s.Other.Details)
	}
}

// Refresh returns s with its description regenerated.
func Refresh(s step.Step) step.Step {
	s.Description = Encode(s)
	return s
}

// NewDelay returns a fixed delay step.
func NewDelay(ms uint32) step.Step {
	return Refresh(step.Step{Kind: step.KindDelay, Delay: step.Delay{Min: ms}})
}

// NewRandomDelay returns a delay step that waits between lo and hi ms.
func NewRandomDelay(lo, hi uint32) step.Step {
	return Refresh(step.Step{Kind: step.KindDelay, Delay: step.Delay{Min: lo, Max: hi, Random: true}})
}

// NewKey returns a key press (release false) or key release step.
func NewKey(name string, release bool) step.Step {
	kind := step.KindKeyPress
	if release {
		kind = step.KindKeyRelease
	}
	return Refresh(step.Step{Kind: kind, Key: name})
}

// NewButton returns a mouse button press (release false) or release step.
func NewButton(name string, release bool) step.Step {
	kind := step.KindMouseClick
	if release {
		kind = step.KindMouseRelease
	}
	return Refresh(step.Step{Kind: kind, Button: step.Button{Name: name}})
}

// NewMove returns an absolute cursor move step.
func NewMove(x, y int32) step.Step {
	return Refresh(step.Step{Kind: step.KindMouseMove, Point: step.Point{X: x, Y: y}})
}

// NewGoto returns a jump step. A line of 0 renders as unresolved.
func NewGoto(line int) step.Step {
	return Refresh(step.Step{Kind: step.KindGoto, Line: line})
}

// NewOther returns a step for an unmodelled capture event.
func NewOther(tag, details string) step.Step {
	return Refresh(step.Step{Kind: step.KindOther, Other: step.Other{Tag: tag, Details: details}})
}
