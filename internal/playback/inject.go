package playback

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/keys"
	"github.com/dshills/macrokit/internal/macro/step"
)

// DryRun is an Injector that prints each action instead of performing it.
type DryRun struct {
	w io.Writer
}

// NewDryRun creates a DryRun writing to w.
func NewDryRun(w io.Writer) *DryRun {
	return &DryRun{w: w}
}

// Key implements Injector.
func (d *DryRun) Key(code keys.Code, down bool) error {
	_, err := fmt.Fprintf(d.w, "key %s %s\n", keys.Name(code), upDown(down))
	return err
}

// Move implements Injector.
func (d *DryRun) Move(p step.Point) error {
	_, err := fmt.Fprintf(d.w, "move %d,%d\n", p.X, p.Y)
	return err
}

// Button implements Injector.
func (d *DryRun) Button(id string, down bool, at step.Point) error {
	_, err := fmt.Fprintf(d.w, "button %s %s at %d,%d\n", id, upDown(down), at.X, at.Y)
	return err
}

func upDown(down bool) string {
	if down {
		return "down"
	}
	return "up"
}

// Capture is an Injector that turns replayed input back into raw capture
// events on a virtual clock. Wire its Sleep into the Player with WithSleep
// so delays advance the clock instead of blocking. Capture implements
// record.Source.
type Capture struct {
	mu     sync.Mutex
	now    time.Duration
	events []consolidate.RawEvent
}

// NewCapture creates an empty Capture.
func NewCapture() *Capture {
	return &Capture{}
}

// Sleep advances the virtual clock by d.
func (c *Capture) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
	return ctx.Err()
}

func (c *Capture) add(kind, details string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, consolidate.RawEvent{
		Timestamp: uint64(c.now.Milliseconds()),
		Kind:      kind,
		Details:   details,
	})
}

// Key implements Injector.
func (c *Capture) Key(code keys.Code, down bool) error {
	c.add(consolidate.TagKey, fmt.Sprintf("VK=%d, State=%s", code, upDown(down)))
	return nil
}

// Move implements Injector.
func (c *Capture) Move(p step.Point) error {
	c.add(consolidate.TagMouseMove, fmt.Sprintf("X=%d, Y=%d", p.X, p.Y))
	return nil
}

// Button implements Injector.
func (c *Capture) Button(id string, down bool, at step.Point) error {
	c.add(consolidate.TagMouseClick, fmt.Sprintf("Btn=%s, State=%s, X=%d, Y=%d", id, upDown(down), at.X, at.Y))
	return nil
}

// Events returns a copy of the captured events.
func (c *Capture) Events() []consolidate.RawEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]consolidate.RawEvent, len(c.events))
	copy(result, c.events)
	return result
}
