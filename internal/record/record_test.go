package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/keys"
)

// ==================== Settings Tests ====================

func TestSettingsAllows(t *testing.T) {
	down := consolidate.RawEvent{Kind: consolidate.TagKey, Details: "VK=65, State=down"}
	up := consolidate.RawEvent{Kind: consolidate.TagKey, Details: "VK=65, State=up"}
	upper := consolidate.RawEvent{Kind: consolidate.TagKey, Details: "VK=65, State=UP"}
	click := consolidate.RawEvent{Kind: consolidate.TagMouseClick, Details: "Btn=left, State=down, X=1, Y=1"}
	wheel := consolidate.RawEvent{Kind: TagMouseWheel, Details: "Dir=up"}
	move := consolidate.RawEvent{Kind: consolidate.TagMouseMove, Details: "X=1, Y=1"}
	delay := consolidate.RawEvent{Kind: consolidate.TagDelay}

	tests := []struct {
		name     string
		settings Settings
		ev       consolidate.RawEvent
		want     bool
	}{
		{"defaults key down", DefaultSettings(), down, true},
		{"defaults key up", DefaultSettings(), up, true},
		{"no keystrokes", Settings{MouseClicks: true, AbsoluteMovement: true, PressDuration: true}, down, false},
		{"no press duration drops up", Settings{Keystrokes: true}, up, false},
		{"no press duration drops upper-case up", Settings{Keystrokes: true}, upper, false},
		{"no press duration keeps down", Settings{Keystrokes: true}, down, true},
		{"no clicks", Settings{}, click, false},
		{"no clicks drops wheel", Settings{}, wheel, false},
		{"clicks", Settings{MouseClicks: true}, click, true},
		{"no movement", Settings{MouseClicks: true}, move, false},
		{"movement", Settings{AbsoluteMovement: true}, move, true},
		{"delay always kept", Settings{}, delay, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.Allows(tt.ev); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ==================== Buffer Tests ====================

func TestBuffer(t *testing.T) {
	b := NewBuffer(Settings{Keystrokes: true})

	var streamed []consolidate.RawEvent
	b.SetSink(func(ev consolidate.RawEvent) {
		streamed = append(streamed, ev)
	})

	kept := consolidate.RawEvent{Timestamp: 1, Kind: consolidate.TagKey, Details: "VK=65, State=down"}
	if !b.Record(kept) {
		t.Error("Record(key down) should be kept")
	}
	if b.Record(consolidate.RawEvent{Timestamp: 2, Kind: consolidate.TagMouseMove, Details: "X=1, Y=2"}) {
		t.Error("Record(move) should be filtered")
	}

	events := b.Events()
	if diff := cmp.Diff([]consolidate.RawEvent{kept}, events); diff != "" {
		t.Errorf("Events() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(events, streamed); diff != "" {
		t.Errorf("sink mismatch (-want +got):\n%s", diff)
	}

	events[0].Kind = "changed"
	if b.Events()[0].Kind != consolidate.TagKey {
		t.Error("Events() should return a copy")
	}

	id := b.SessionID()
	if id == "" {
		t.Fatal("SessionID() is empty")
	}
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d", b.Len())
	}
	if b.SessionID() == id {
		t.Error("Reset should start a new session")
	}
}

// ==================== Key Translation Tests ====================

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name   string
		ev     *tcell.EventKey
		want   stroke
		wantOK bool
	}{
		{"lower", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), stroke{code: 0x41}, true},
		{"upper", tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModNone), stroke{mods: []keys.Code{keys.CodeLeftShift}, code: 0x41}, true},
		{"digit", tcell.NewEventKey(tcell.KeyRune, '7', tcell.ModNone), stroke{code: 0x37}, true},
		{"bang", tcell.NewEventKey(tcell.KeyRune, '!', tcell.ModNone), stroke{mods: []keys.Code{keys.CodeLeftShift}, code: 0x31}, true},
		{"slash", tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone), stroke{code: 0xBF}, true},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), stroke{code: keys.CodeSpace}, true},
		{"alt", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), stroke{mods: []keys.Code{keys.CodeLeftAlt}, code: 0x58}, true},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), stroke{code: keys.CodeReturn}, true},
		{"arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), stroke{code: 0x26}, true},
		{"shift arrow", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift), stroke{mods: []keys.Code{keys.CodeLeftShift}, code: 0x25}, true},
		{"f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), stroke{code: 0x74}, true},
		{"ctrl c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), stroke{mods: []keys.Code{keys.CodeLeftCtrl}, code: 0x43}, true},
		{"non latin", tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone), stroke{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateKey(tt.ev)
			if ok != tt.wantOK {
				t.Fatalf("translateKey() ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(stroke{})); diff != "" {
				t.Errorf("translateKey() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStopKey(t *testing.T) {
	tests := []struct {
		in      string
		want    tcell.Key
		wantErr bool
	}{
		{"F12", tcell.KeyF12, false},
		{"f1", tcell.KeyF1, false},
		{"Esc", tcell.KeyEscape, false},
		{"ctrl+q", tcell.KeyCtrlQ, false},
		{"F25", 0, true},
		{"ctrl+1", 0, true},
		{"space", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseStopKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStopKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseStopKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ==================== Terminal Tests ====================

func descriptions(events []consolidate.RawEvent) []string {
	var out []string
	for _, s := range consolidate.New(consolidate.WithThreshold(1 << 30)).Run(events).Steps {
		out = append(out, s.Description)
	}
	return out
}

func TestTerminalHandle(t *testing.T) {
	buf := NewBuffer(DefaultSettings())
	term := NewTerminal(nil, buf)

	evs := []tcell.Event{
		tcell.NewEventKey(tcell.KeyRune, 'Q', tcell.ModNone),
		tcell.NewEventMouse(3, 4, tcell.ButtonPrimary, tcell.ModNone),
		tcell.NewEventMouse(3, 4, tcell.ButtonPrimary, tcell.ModNone),
		tcell.NewEventMouse(3, 4, tcell.ButtonNone, tcell.ModNone),
		tcell.NewEventMouse(5, 4, tcell.WheelUp, tcell.ModNone),
	}
	for _, ev := range evs {
		if term.Handle(ev) {
			t.Fatalf("Handle(%T) reported stop", ev)
		}
	}
	if !term.Handle(tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone)) {
		t.Error("F12 should stop the recording")
	}

	want := []string{
		"Press LeftShift",
		"Press Q",
		"Release Q",
		"Release LeftShift",
		"Move cursor 3 4 (absolute)",
		"Click Left Mouse",
		"Release Left Mouse",
		"Move cursor 5 4 (absolute)",
		"MouseWheel: Dir=up, X=5, Y=4",
	}
	if diff := cmp.Diff(want, descriptions(term.Events())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminalRun(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer screen.Fini()

	buf := NewBuffer(DefaultSettings())
	term := NewTerminal(screen, buf, WithStopKey(tcell.KeyEscape))

	done := make(chan error, 1)
	go func() {
		done <- term.Run(context.Background())
	}()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop on the stop key")
	}

	if diff := cmp.Diff([]string{"Press X", "Release X"}, descriptions(buf.Events())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminalRunCancel(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	term := NewTerminal(screen, NewBuffer(DefaultSettings()))

	done := make(chan error, 1)
	go func() {
		done <- term.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop on cancel")
	}
}
