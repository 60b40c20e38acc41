package transform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/step"
)

func sample() []step.Step {
	steps := []step.Step{
		codec.NewKey("A", false),
		codec.NewDelay(40),
		codec.NewKey("A", true),
		codec.NewMove(10, 20),
		codec.NewOther("Wheel", "Delta=120"),
	}
	step.Renumber(steps)
	return steps
}

func runScript(t *testing.T, src string, steps []step.Step) []step.Step {
	t.Helper()
	s, err := LoadScript(src, nil)
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	defer s.Close()

	out, err := s.Apply(context.Background(), steps)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return out
}

func TestScriptIdentity(t *testing.T) {
	in := sample()
	out := runScript(t, `function transform(s) return s end`, in)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("identity script changed steps (-want +got):\n%s", diff)
	}
}

func TestScriptDropsDelays(t *testing.T) {
	out := runScript(t, `
function transform(s)
  if s.kind == "Delay" then return nil end
  return true
end`, sample())

	want := []string{"Press A", "Release A", "Move cursor 10 20 (absolute)", "Wheel: Delta=120"}
	var got []string
	for i, s := range out {
		got = append(got, s.Description)
		if s.Seq != i+1 {
			t.Errorf("step %d Seq = %d", i, s.Seq)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptRewritesFields(t *testing.T) {
	out := runScript(t, `
function transform(s)
  if s.kind == "Delay" then
    s.min = s.min * 2
  elseif s.kind == "MouseMove" then
    s.x = s.x + 1
    s.comment = "nudged"
  elseif s.kind == "KeyPress" then
    s.key = macro.key_name(macro.key_code("enter"))
  end
  return s
end`, sample())

	want := []string{"Press Return", "Delay 80 ms.", "Release A", "Move cursor 11 20 (absolute)", "Wheel: Delta=120"}
	var got []string
	for _, s := range out {
		got = append(got, s.Description)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if out[3].Comment != "nudged" || out[3].Point.X != 11 {
		t.Errorf("move step = %+v", out[3])
	}
}

func TestScriptChangesKind(t *testing.T) {
	out := runScript(t, `
function transform(s)
  if s.kind == "Delay" then
    return { kind = "Delay", min = 10, max = 20, random = true }
  end
  return s
end`, sample())

	if out[1].Description != "Delay from 10 to 20 ms." || !out[1].Delay.Random {
		t.Errorf("delay step = %+v", out[1])
	}
}

func TestScriptValidationError(t *testing.T) {
	s, err := LoadScript(`function transform(s) s.min = 0 return s end`, nil)
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	defer s.Close()

	_, err = s.Apply(context.Background(), []step.Step{codec.NewDelay(5)})
	if !errors.Is(err, codec.ErrValidation) {
		t.Errorf("Apply() error = %v, want validation error", err)
	}
}

func TestScriptBadReturn(t *testing.T) {
	s, err := LoadScript(`function transform(s) return 42 end`, nil)
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Apply(context.Background(), sample()); err == nil {
		t.Error("Apply() should reject a numeric return")
	}
}

func TestScriptRuntimeError(t *testing.T) {
	s, err := LoadScript(`function transform(s) error("nope") end`, nil)
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Apply(context.Background(), sample()); err == nil {
		t.Error("Apply() should surface script errors")
	}
}

func TestScriptCancelled(t *testing.T) {
	s, err := LoadScript(`function transform(s) while true do end end`, nil)
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Apply(ctx, sample()); err == nil {
		t.Error("Apply() should stop on a cancelled context")
	}
}

func TestLoadScriptErrors(t *testing.T) {
	if _, err := LoadScript(`x = 1`, nil); !errors.Is(err, ErrNoTransform) {
		t.Errorf("LoadScript(no transform) error = %v, want ErrNoTransform", err)
	}
	if _, err := LoadScript(`function (`, nil); err == nil {
		t.Error("LoadScript(syntax error) should fail")
	}
	if _, err := LoadScript(`os.exit(1)`, nil); err == nil {
		t.Error("os library should not be available")
	}
}

func TestLoadScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.lua")
	if err := os.WriteFile(path, []byte(`function transform(s) return nil end`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScriptFile(path, nil)
	if err != nil {
		t.Fatalf("LoadScriptFile() error = %v", err)
	}
	defer s.Close()

	out, err := s.Apply(context.Background(), sample())
	if err != nil || len(out) != 0 {
		t.Errorf("Apply() = %v, %v", out, err)
	}

	if _, err := LoadScriptFile(filepath.Join(t.TempDir(), "missing.lua"), nil); err == nil {
		t.Error("LoadScriptFile(missing) should fail")
	}
}
