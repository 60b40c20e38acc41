package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/macrofile"
)

func keyEvent(t uint64, state string) consolidate.RawEvent {
	return consolidate.RawEvent{Timestamp: t, Kind: consolidate.TagKey, Details: "VK=65, State=" + state}
}

func descriptions(u Update) []string {
	var out []string
	for _, s := range u.Steps {
		out = append(out, s.Description)
	}
	return out
}

func waitUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestRefreshMissingLog(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "none.jsonl"), func(Update) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	u, err := w.Refresh()
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(u.Steps) != 0 || u.Events != 0 {
		t.Errorf("Refresh() = %+v, want empty", u)
	}
}

func TestNewRequiresCallback(t *testing.T) {
	if _, err := New("x.jsonl", nil); err == nil {
		t.Error("New() with nil callback should fail")
	}
}

func TestRunRecomputesOnAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	if err := macrofile.AppendLogFile(path, []consolidate.RawEvent{keyEvent(0, "down")}); err != nil {
		t.Fatalf("AppendLogFile() error = %v", err)
	}

	updates := make(chan Update, 10)
	w, err := New(path, func(u Update) { updates <- u }, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if diff := cmp.Diff([]string{"Press A"}, descriptions(waitUpdate(t, updates))); diff != "" {
		t.Errorf("initial update mismatch (-want +got):\n%s", diff)
	}

	// A repeated press continues the existing step, so the next visible
	// change comes from the release.
	more := []consolidate.RawEvent{keyEvent(30, "down"), keyEvent(120, "up")}
	if err := macrofile.AppendLogFile(path, more); err != nil {
		t.Fatalf("AppendLogFile() error = %v", err)
	}

	u := waitUpdate(t, updates)
	want := []string{"Press A", "Delay 120 ms.", "Release A"}
	if diff := cmp.Diff(want, descriptions(u)); diff != "" {
		t.Errorf("update mismatch (-want +got):\n%s", diff)
	}
	if u.Events != 3 {
		t.Errorf("Events = %d, want 3", u.Events)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.jsonl")

	updates := make(chan Update, 10)
	w, err := New(path, func(u Update) { updates <- u }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if u := waitUpdate(t, updates); len(u.Steps) != 0 {
		t.Errorf("initial update = %v, want empty", descriptions(u))
	}

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case u := <-updates:
		t.Errorf("unexpected update %v", descriptions(u))
	case <-time.After(200 * time.Millisecond):
	}
}
