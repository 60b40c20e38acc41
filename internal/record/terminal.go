package record

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/keys"
)

// trackedButtons are the terminal buttons reported as clicks, with their
// macro file ids.
var trackedButtons = []struct {
	mask tcell.ButtonMask
	id   string
}{
	{tcell.ButtonPrimary, "left"},
	{tcell.ButtonSecondary, "right"},
	{tcell.ButtonMiddle, "middle"},
	{tcell.Button4, "x1"},
	{tcell.Button5, "x2"},
}

var wheelDirections = []struct {
	mask tcell.ButtonMask
	dir  string
}{
	{tcell.WheelUp, "up"},
	{tcell.WheelDown, "down"},
	{tcell.WheelLeft, "left"},
	{tcell.WheelRight, "right"},
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithStopKey sets the key that ends the recording. The default is F12.
func WithStopKey(k tcell.Key) TerminalOption {
	return func(t *Terminal) {
		t.stopKey = k
	}
}

// WithTerminalLogger sets the logger.
func WithTerminalLogger(l *logging.Logger) TerminalOption {
	return func(t *Terminal) {
		t.logger = logging.OrNull(l).WithComponent("record")
	}
}

// Terminal captures keyboard and mouse input from a terminal screen into a
// Buffer.
//
// Terminals report key presses only, so each key is recorded as a press
// immediately followed by its release. Mouse positions are character cells.
type Terminal struct {
	screen  tcell.Screen
	buf     *Buffer
	stopKey tcell.Key
	logger  *logging.Logger

	start   time.Time
	buttons tcell.ButtonMask
	lastX   int
	lastY   int
	moved   bool
}

// NewTerminal creates a capture source reading from screen. The screen
// must already be initialized; Run enables mouse reporting on it.
func NewTerminal(screen tcell.Screen, buf *Buffer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen:  screen,
		buf:     buf,
		stopKey: tcell.KeyF12,
		logger:  logging.Null,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Events returns everything captured so far.
func (t *Terminal) Events() []consolidate.RawEvent {
	return t.buf.Events()
}

// Run captures events until the stop key is pressed, ctx is cancelled or
// the screen is finalized. Pressing the stop key is a normal end and
// returns nil.
func (t *Terminal) Run(ctx context.Context) error {
	t.start = time.Now()
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.logger.Info("recording session %s, press %s to stop", t.buf.SessionID(), tcell.KeyNames[t.stopKey])
	t.status()

	stop := context.AfterFunc(ctx, func() {
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; a full queue still ends on the next event
	})
	defer stop()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if done := t.Handle(ev); done {
			t.logger.Info("recording stopped after %d events", t.buf.Len())
			return nil
		}
		t.status()
	}
}

// Handle records one terminal event and reports whether it was the stop
// key.
func (t *Terminal) Handle(ev tcell.Event) bool {
	if t.start.IsZero() {
		t.start = ev.When()
	}

	switch e := ev.(type) {
	case *tcell.EventKey:
		if e.Key() == t.stopKey {
			return true
		}
		t.handleKey(e)
	case *tcell.EventMouse:
		t.handleMouse(e)
	}
	return false
}

func (t *Terminal) timestamp(ev tcell.Event) uint64 {
	ms := ev.When().Sub(t.start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

func (t *Terminal) handleKey(e *tcell.EventKey) {
	s, ok := translateKey(e)
	if !ok {
		t.logger.Debug("ignoring key %s with no virtual-key code", e.Name())
		return
	}

	ts := t.timestamp(e)
	key := func(code keys.Code, state string) {
		t.buf.Record(consolidate.RawEvent{
			Timestamp: ts,
			Kind:      consolidate.TagKey,
			Details:   fmt.Sprintf("VK=%d, State=%s", code, state),
		})
	}

	for _, m := range s.mods {
		key(m, "down")
	}
	key(s.code, "down")
	key(s.code, "up")
	for i := len(s.mods) - 1; i >= 0; i-- {
		key(s.mods[i], "up")
	}
}

func (t *Terminal) handleMouse(e *tcell.EventMouse) {
	ts := t.timestamp(e)
	x, y := e.Position()

	if !t.moved || x != t.lastX || y != t.lastY {
		t.buf.Record(consolidate.RawEvent{
			Timestamp: ts,
			Kind:      consolidate.TagMouseMove,
			Details:   fmt.Sprintf("X=%d, Y=%d", x, y),
		})
		t.lastX, t.lastY, t.moved = x, y, true
	}

	mask := e.Buttons()
	for _, b := range trackedButtons {
		was, is := t.buttons&b.mask != 0, mask&b.mask != 0
		if was == is {
			continue
		}
		state := "up"
		if is {
			state = "down"
		}
		t.buf.Record(consolidate.RawEvent{
			Timestamp: ts,
			Kind:      consolidate.TagMouseClick,
			Details:   fmt.Sprintf("Btn=%s, State=%s, X=%d, Y=%d", b.id, state, x, y),
		})
	}
	t.buttons = mask

	for _, w := range wheelDirections {
		if mask&w.mask != 0 {
			t.buf.Record(consolidate.RawEvent{
				Timestamp: ts,
				Kind:      TagMouseWheel,
				Details:   fmt.Sprintf("Dir=%s, X=%d, Y=%d", w.dir, x, y),
			})
		}
	}
}

// status draws a one-line recording indicator.
func (t *Terminal) status() {
	line := fmt.Sprintf(" REC %d events | %s stops ", t.buf.Len(), tcell.KeyNames[t.stopKey])
	style := tcell.StyleDefault.Reverse(true)
	for i, r := range line {
		t.screen.SetContent(i, 0, r, nil, style)
	}
	t.screen.Show()
}
