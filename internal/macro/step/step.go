package step

import (
	"fmt"
	"strings"
)

// Kind identifies what a step does.
type Kind uint8

const (
	// KindOther holds capture events this package has no model for.
	KindOther Kind = iota
	// KindDelay waits a fixed or random number of milliseconds.
	KindDelay
	// KindKeyPress presses a key.
	KindKeyPress
	// KindKeyRelease releases a key.
	KindKeyRelease
	// KindMouseClick presses a mouse button.
	KindMouseClick
	// KindMouseRelease releases a mouse button.
	KindMouseRelease
	// KindMouseMove moves the cursor to absolute screen coordinates.
	KindMouseMove
	// KindGoto jumps playback to another line.
	KindGoto
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDelay:
		return "Delay"
	case KindKeyPress:
		return "KeyPress"
	case KindKeyRelease:
		return "KeyRelease"
	case KindMouseClick:
		return "MouseClick"
	case KindMouseRelease:
		return "MouseRelease"
	case KindMouseMove:
		return "MouseMove"
	case KindGoto:
		return "Goto"
	default:
		return "Other"
	}
}

// Tag returns the capture-layer event tag for the kind. Press and release
// share a tag; the action word in the description tells them apart.
func (k Kind) Tag() string {
	switch k {
	case KindKeyPress, KindKeyRelease:
		return "Key"
	case KindMouseClick, KindMouseRelease:
		return "MouseClick"
	default:
		return k.String()
	}
}

// IsKey reports whether k is a key press or release.
func (k Kind) IsKey() bool {
	return k == KindKeyPress || k == KindKeyRelease
}

// IsButton reports whether k is a mouse button press or release.
func (k Kind) IsButton() bool {
	return k == KindMouseClick || k == KindMouseRelease
}

// ParseKind parses a kind name (case-insensitive). The capture tags "Key"
// and "MouseClick" parse to the press variants.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delay":
		return KindDelay, nil
	case "keypress", "key", "press":
		return KindKeyPress, nil
	case "keyrelease", "release":
		return KindKeyRelease, nil
	case "mouseclick", "click":
		return KindMouseClick, nil
	case "mouserelease":
		return KindMouseRelease, nil
	case "mousemove", "move":
		return KindMouseMove, nil
	case "goto":
		return KindGoto, nil
	case "other":
		return KindOther, nil
	default:
		return KindOther, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Point is an absolute screen position.
type Point struct {
	X int32
	Y int32
}

// Delay is the payload of a delay step. Random delays wait a uniformly
// chosen time between Min and Max.
type Delay struct {
	Min    uint32
	Max    uint32
	Random bool
}

// Button is the payload of a mouse button step. At is only meaningful when
// HasAt is set.
type Button struct {
	Name  string
	At    Point
	HasAt bool
}

// Other is the payload of an unmodelled capture event.
type Other struct {
	Tag     string
	Details string
}

// Step is one entry of a macro timeline.
//
// Only the payload field matching Kind carries meaning. Description is the
// canonical rendering of that payload and is regenerated whenever the
// payload changes. Step is a plain value: copying it yields an independent
// step.
type Step struct {
	Seq         int
	Kind        Kind
	Description string
	Comment     string

	Delay  Delay
	Key    string
	Button Button
	Point  Point
	Line   int
	Other  Other
}

// ActionKey identifies a step for consolidation. Comment and sequence
// number do not take part.
type ActionKey struct {
	Kind        Kind
	Description string
}

// ConsolidationKey returns the identity used to collapse repeated actions.
func (s Step) ConsolidationKey() ActionKey {
	return ActionKey{Kind: s.Kind, Description: s.Description}
}

// SameAction reports whether s and other describe the same action.
func (s Step) SameAction(other Step) bool {
	return s.ConsolidationKey() == other.ConsolidationKey()
}

// Clone returns an independent copy of s.
func (s Step) Clone() Step {
	return s
}

// Valid reports whether the populated payload matches the kind.
func (s Step) Valid() bool {
	switch s.Kind {
	case KindDelay:
		return !s.Delay.Random || s.Delay.Max >= s.Delay.Min
	case KindKeyPress, KindKeyRelease:
		return strings.TrimSpace(s.Key) != ""
	case KindMouseClick, KindMouseRelease:
		return strings.TrimSpace(s.Button.Name) != ""
	case KindMouseMove:
		return true
	case KindGoto:
		return s.Line > 0
	case KindOther:
		return s.Other.Tag != ""
	default:
		return false
	}
}

// String returns the description prefixed with the sequence number.
func (s Step) String() string {
	if s.Comment != "" {
		return fmt.Sprintf("%d. %s  // %s", s.Seq, s.Description, s.Comment)
	}
	return fmt.Sprintf("%d. %s", s.Seq, s.Description)
}
