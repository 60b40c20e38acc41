package codec

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/macrokit/internal/macro/step"
)

// ==================== Encode Tests ====================

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		step step.Step
		want string
	}{
		{"fixed delay", step.Step{Kind: step.KindDelay, Delay: step.Delay{Min: 250}}, "Delay 250 ms."},
		{"random delay", step.Step{Kind: step.KindDelay, Delay: step.Delay{Min: 100, Max: 300, Random: true}}, "Delay from 100 to 300 ms."},
		{"key press", step.Step{Kind: step.KindKeyPress, Key: "A"}, "Press A"},
		{"key release", step.Step{Kind: step.KindKeyRelease, Key: "LeftShift"}, "Release LeftShift"},
		{"key with space", step.Step{Kind: step.KindKeyPress, Key: "Volume Up"}, "Press Volume Up"},
		{"click", step.Step{Kind: step.KindMouseClick, Button: step.Button{Name: "Left"}}, "Click Left Mouse"},
		{"release", step.Step{Kind: step.KindMouseRelease, Button: step.Button{Name: "Right"}}, "Release Right Mouse"},
		{"click at", step.Step{Kind: step.KindMouseClick, Button: step.Button{Name: "X1", At: step.Point{X: -3, Y: 40}, HasAt: true}}, "Click X1 Mouse at (-3, 40)"},
		{"move", step.Step{Kind: step.KindMouseMove, Point: step.Point{X: 10, Y: 20}}, "Move cursor 10 20 (absolute)"},
		{"negative move", step.Step{Kind: step.KindMouseMove, Point: step.Point{X: -1920, Y: 0}}, "Move cursor -1920 0 (absolute)"},
		{"goto", step.Step{Kind: step.KindGoto, Line: 3}, "Go to line #3"},
		{"unresolved goto", step.Step{Kind: step.KindGoto}, "Go to line #?"},
		{"other", step.Step{Kind: step.KindOther, Other: step.Other{Tag: "Wheel", Details: "Delta=120"}}, "Wheel: Delta=120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.step); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		step step.Step
		want string
	}{
		{NewDelay(5), "Delay 5 ms."},
		{NewRandomDelay(1, 2), "Delay from 1 to 2 ms."},
		{NewKey("A", false), "Press A"},
		{NewKey("A", true), "Release A"},
		{NewButton("Middle", false), "Click Middle Mouse"},
		{NewButton("Middle", true), "Release Middle Mouse"},
		{NewMove(1, -1), "Move cursor 1 -1 (absolute)"},
		{NewGoto(7), "Go to line #7"},
		{NewOther("Scroll", "Y=3"), "Scroll: Y=3"},
	}

	for _, tt := range tests {
		if tt.step.Description != tt.want {
			t.Errorf("Description = %q, want %q", tt.step.Description, tt.want)
		}
	}
}

// ==================== Round Trip Tests ====================

func TestBuildDecodeRoundTrip(t *testing.T) {
	forms := []Form{
		{Kind: step.KindDelay, MinDelay: "1"},
		{Kind: step.KindDelay, MinDelay: "4294967295"},
		{Kind: step.KindDelay, MinDelay: "10", MaxDelay: "10", Random: true},
		{Kind: step.KindDelay, MinDelay: "10", MaxDelay: "500", Random: true},
		{Kind: step.KindKeyPress, KeyName: "A"},
		{Kind: step.KindKeyRelease, KeyName: "Volume Up"},
		{Kind: step.KindMouseClick, Button: "Left"},
		{Kind: step.KindMouseRelease, Button: "X2"},
		{Kind: step.KindMouseClick, Button: "Right", X: "-5", Y: "900"},
		{Kind: step.KindMouseMove, X: "0", Y: "0"},
		{Kind: step.KindMouseMove, X: "-2147483648", Y: "2147483647"},
		{Kind: step.KindGoto, Line: "12"},
		{Kind: step.KindKeyPress, KeyName: "B", Comment: "second field"},
	}

	for _, f := range forms {
		s, err := Build(f)
		if err != nil {
			t.Errorf("Build(%+v) error = %v", f, err)
			continue
		}
		if s.Description != Encode(s) {
			t.Errorf("Build(%+v) description %q is not canonical", f, s.Description)
		}

		got, err := Decode(s)
		if err != nil {
			t.Errorf("Decode(%q) error = %v", s.Description, err)
			continue
		}
		if diff := cmp.Diff(f, got); diff != "" {
			t.Errorf("Decode(Build(f)) mismatch (-want +got):\n%s", diff)
		}

		again, err := Build(got)
		if err != nil {
			t.Errorf("Build(Decode(s)) error = %v", err)
			continue
		}
		if diff := cmp.Diff(s, again); diff != "" {
			t.Errorf("Build(Decode(s)) mismatch (-want +got):\n%s", diff)
		}
	}
}

// ==================== Decode Tests ====================

func TestDecodeActionWord(t *testing.T) {
	tests := []struct {
		step step.Step
		want step.Kind
	}{
		{step.Step{Kind: step.KindKeyPress, Description: "Release A"}, step.KindKeyRelease},
		{step.Step{Kind: step.KindKeyRelease, Description: "Press A"}, step.KindKeyPress},
		{step.Step{Kind: step.KindMouseClick, Description: "Release Left Mouse"}, step.KindMouseRelease},
		{step.Step{Kind: step.KindMouseRelease, Description: "Click Left Mouse"}, step.KindMouseClick},
	}

	for _, tt := range tests {
		f, err := Decode(tt.step)
		if err != nil {
			t.Errorf("Decode(%q) error = %v", tt.step.Description, err)
		}
		if f.Kind != tt.want {
			t.Errorf("Decode(%q).Kind = %v, want %v", tt.step.Description, f.Kind, tt.want)
		}
	}
}

func TestDecodeButtonCaseInsensitive(t *testing.T) {
	f, err := Decode(step.Step{Kind: step.KindMouseClick, Description: "Click left Mouse"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.Button != "Left" {
		t.Errorf("Button = %q, want Left", f.Button)
	}
}

func TestDecodeDelayFromDescription(t *testing.T) {
	tests := []struct {
		desc   string
		min    string
		max    string
		random bool
	}{
		{"Delay 40 ms.", "40", "", false},
		{"Delay from 5 to 9 ms.", "5", "9", true},
	}

	for _, tt := range tests {
		f, err := Decode(step.Step{Kind: step.KindDelay, Description: tt.desc})
		if err != nil {
			t.Errorf("Decode(%q) error = %v", tt.desc, err)
			continue
		}
		if f.MinDelay != tt.min || f.MaxDelay != tt.max || f.Random != tt.random {
			t.Errorf("Decode(%q) = %+v", tt.desc, f)
		}
	}
}

func TestDecodeGotoFromDescription(t *testing.T) {
	f, err := Decode(step.Step{Kind: step.KindGoto, Description: "Go to line #4"})
	if err != nil || f.Line != "4" {
		t.Errorf("Decode() = %+v, %v", f, err)
	}
}

func TestDecodeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		step  step.Step
		blank []string
	}{
		{"move", step.Step{Kind: step.KindMouseMove, Description: "Move cursor left"}, []string{"x", "y"}},
		{"move text", step.Step{Kind: step.KindMouseMove, Description: "Move cursor a b (absolute)"}, []string{"x", "y"}},
		{"key", step.Step{Kind: step.KindKeyPress, Description: "Press"}, []string{"key"}},
		{"key action", step.Step{Kind: step.KindKeyPress, Description: "Tap A"}, []string{"action"}},
		{"button", step.Step{Kind: step.KindMouseClick, Description: "Click Wheel Mouse"}, []string{"button"}},
		{"empty button", step.Step{Kind: step.KindMouseClick, Description: ""}, []string{"button"}},
		{"goto", step.Step{Kind: step.KindGoto, Description: "Go to line #?"}, []string{"line"}},
		{"delay", step.Step{Kind: step.KindDelay, Description: "Wait a bit"}, []string{"min"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(tt.step)
			if !errors.Is(err, ErrDecodeMismatch) {
				t.Fatalf("Decode() error = %v, want ErrDecodeMismatch", err)
			}
			var dm *DecodeMismatch
			if !errors.As(err, &dm) {
				t.Fatalf("error is %T, want *DecodeMismatch", err)
			}
			if diff := cmp.Diff(tt.blank, dm.Fields); diff != "" {
				t.Errorf("blank fields mismatch (-want +got):\n%s", diff)
			}
			if f.Kind != tt.step.Kind {
				t.Errorf("form kind = %v, want %v", f.Kind, tt.step.Kind)
			}
		})
	}
}

// ==================== Build Tests ====================

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{"zero delay", Form{Kind: step.KindDelay, MinDelay: "0"}, "min"},
		{"negative delay", Form{Kind: step.KindDelay, MinDelay: "-4"}, "min"},
		{"text delay", Form{Kind: step.KindDelay, MinDelay: "soon"}, "min"},
		{"overflow delay", Form{Kind: step.KindDelay, MinDelay: "4294967296"}, "min"},
		{"max below min", Form{Kind: step.KindDelay, MinDelay: "10", MaxDelay: "5", Random: true}, "max"},
		{"missing max", Form{Kind: step.KindDelay, MinDelay: "10", Random: true}, "max"},
		{"blank key", Form{Kind: step.KindKeyPress, KeyName: "   "}, "key"},
		{"no button", Form{Kind: step.KindMouseClick}, "button"},
		{"unknown button", Form{Kind: step.KindMouseRelease, Button: "Wheel"}, "button"},
		{"click half position", Form{Kind: step.KindMouseClick, Button: "Left", X: "4"}, "y"},
		{"move x", Form{Kind: step.KindMouseMove, X: "1.5", Y: "2"}, "x"},
		{"move y", Form{Kind: step.KindMouseMove, X: "1", Y: ""}, "y"},
		{"move overflow", Form{Kind: step.KindMouseMove, X: "2147483648", Y: "0"}, "x"},
		{"goto zero", Form{Kind: step.KindGoto, Line: "0"}, "line"},
		{"goto text", Form{Kind: step.KindGoto, Line: "next"}, "line"},
		{"other", Form{Kind: step.KindOther}, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build(tt.form)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Build() error = %v, want ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error is %T, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q (%s)", ve.Field, tt.field, ve.Message)
			}
			if s != (step.Step{}) {
				t.Errorf("Build() returned a step alongside an error: %+v", s)
			}
		})
	}
}

func TestBuildTrims(t *testing.T) {
	s, err := Build(Form{Kind: step.KindKeyPress, KeyName: "  Return ", Comment: "  go "})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.Description != "Press Return" || s.Comment != "go" {
		t.Errorf("Build() = %+v", s)
	}

	s, err = Build(Form{Kind: step.KindMouseClick, Button: "middle"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.Description != "Click Middle Mouse" {
		t.Errorf("Description = %q", s.Description)
	}
}

// ==================== Coordinate Tests ====================

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		desc   string
		want   step.Point
		wantOK bool
	}{
		{"Move cursor 10 20 (absolute)", step.Point{X: 10, Y: 20}, true},
		{"Move cursor -5 7 (absolute)", step.Point{X: -5, Y: 7}, true},
		{"Click Left Mouse at (3, 4)", step.Point{X: 3, Y: 4}, true},
		{"Release Right Mouse at ( -1 ,-2 )", step.Point{X: -1, Y: -2}, true},
		{"Click Left Mouse", step.Point{}, false},
		{"Move cursor x y (absolute)", step.Point{}, false},
		{"Move cursor 1", step.Point{}, false},
		{"Click Left Mouse at (3)", step.Point{}, false},
		{"Click Left Mouse at (3, 4", step.Point{}, false},
		{"", step.Point{}, false},
	}

	for _, tt := range tests {
		got, ok := ExtractCoordinates(tt.desc)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractCoordinates(%q) = (%v, %v), want (%v, %v)", tt.desc, got, ok, tt.want, tt.wantOK)
		}
	}
}
