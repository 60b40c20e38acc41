package record

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/macrokit/internal/macro/consolidate"
)

// TagMouseWheel tags wheel notches. The consolidator has no model for them,
// so they surface as Other steps.
const TagMouseWheel = "MouseWheel"

// Source supplies the full raw event history of a capture session, in
// arrival order. Every call returns everything captured so far.
type Source interface {
	Events() []consolidate.RawEvent
}

// Settings selects which captured events are kept.
type Settings struct {
	Keystrokes       bool
	MouseClicks      bool
	AbsoluteMovement bool
	// PressDuration keeps key releases, so the time a key was held shows
	// up as a delay between its press and release.
	PressDuration bool
}

// DefaultSettings records everything.
func DefaultSettings() Settings {
	return Settings{
		Keystrokes:       true,
		MouseClicks:      true,
		AbsoluteMovement: true,
		PressDuration:    true,
	}
}

// Allows reports whether ev passes the settings.
func (s Settings) Allows(ev consolidate.RawEvent) bool {
	switch ev.Kind {
	case consolidate.TagKey:
		if !s.Keystrokes {
			return false
		}
		if !s.PressDuration {
			state, _ := consolidate.ParseDetails(ev.Details).Get("State")
			return !strings.EqualFold(state, "up")
		}
		return true
	case consolidate.TagMouseClick, TagMouseWheel:
		return s.MouseClicks
	case consolidate.TagMouseMove:
		return s.AbsoluteMovement
	default:
		return true
	}
}

// Buffer collects the events of one capture session. It is safe for
// concurrent use and implements Source.
type Buffer struct {
	mu       sync.Mutex
	id       string
	settings Settings
	events   []consolidate.RawEvent
	sink     func(consolidate.RawEvent)
}

// NewBuffer creates an empty buffer with a fresh session ID.
func NewBuffer(settings Settings) *Buffer {
	return &Buffer{
		id:       uuid.NewString(),
		settings: settings,
	}
}

// SessionID identifies the capture session.
func (b *Buffer) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

// SetSink registers fn to receive every kept event as it is recorded,
// for example to append it to a log. fn runs with the buffer locked and
// must not call back into the buffer.
func (b *Buffer) SetSink(fn func(consolidate.RawEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = fn
}

// Record appends ev when the settings allow it and reports whether it was
// kept.
func (b *Buffer) Record(ev consolidate.RawEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.settings.Allows(ev) {
		return false
	}
	b.events = append(b.events, ev)
	if b.sink != nil {
		b.sink(ev)
	}
	return true
}

// Events returns a copy of the recorded events.
func (b *Buffer) Events() []consolidate.RawEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]consolidate.RawEvent, len(b.events))
	copy(result, b.events)
	return result
}

// Len returns the number of recorded events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Reset drops all events and starts a new session.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
	b.id = uuid.NewString()
}
