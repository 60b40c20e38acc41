package consolidate

import (
	"math"
	"strings"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/keys"
	"github.com/dshills/macrokit/internal/macro/step"
)

// DefaultThreshold is the accumulated time, in milliseconds, at or below
// which no Delay step is emitted.
const DefaultThreshold uint32 = 1

// Placeholders for fields that cannot be resolved.
const (
	UnknownKey    = "Unknown Key"
	UnknownButton = "Unknown Button"
)

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(c *Consolidator) {
		c.logger = logging.OrNull(l).WithComponent("consolidate")
	}
}

// WithThreshold sets the delay threshold in milliseconds.
func WithThreshold(ms uint32) Option {
	return func(c *Consolidator) {
		c.threshold = ms
	}
}

// WithKeyNamer replaces the virtual-key name lookup.
func WithKeyNamer(name func(keys.Code) string) Option {
	return func(c *Consolidator) {
		if name != nil {
			c.keyName = name
		}
	}
}

// Consolidator turns raw capture streams into step timelines. It holds no
// state between runs, so one Consolidator may be reused and shared.
type Consolidator struct {
	logger    *logging.Logger
	threshold uint32
	keyName   func(keys.Code) string
}

// New creates a Consolidator.
func New(opts ...Option) *Consolidator {
	c := &Consolidator{
		logger:    logging.Null,
		threshold: DefaultThreshold,
		keyName:   keys.Name,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a consolidation pass.
type Result struct {
	// Steps is the timeline, numbered from 1.
	Steps []step.Step
	// Warnings lists events that were rendered with placeholders.
	Warnings []*EventError
	// StepOf maps each event index to the index in Steps of the step it
	// produced or continued. Raw delays map to the next action's step.
	// Events with no such step map to -1.
	StepOf []int
	// Err is set when the pass stopped early. Steps then holds what was
	// emitted up to that point.
	Err error
}

// Consolidate runs a default Consolidator over events and returns the steps.
func Consolidate(events []RawEvent) []step.Step {
	return New().Run(events).Steps
}

// Run consolidates events in a single forward pass.
//
// Time between events accumulates into the delay preceding the next
// distinct action. Raw Delay events only contribute time. An action equal
// to the last emitted one (same kind and description) is treated as a
// continuation and not emitted again. Run never panics.
func (c *Consolidator) Run(events []RawEvent) (res Result) {
	var (
		steps     []step.Step
		warnings  []*EventError
		processed int
	)

	stepOf := make([]int, len(events))
	for i := range stepOf {
		stepOf[i] = -1
	}

	defer func() {
		if r := recover(); r != nil {
			failure := &UnexpectedFailure{Processed: processed, Total: len(events), Value: r}
			c.logger.Error("%v", failure)
			step.Renumber(steps)
			res = Result{Steps: steps, Warnings: warnings, StepOf: stepOf, Err: failure}
		}
	}()

	var lastTime uint64
	if len(events) > 0 {
		lastTime = events[0].Timestamp
	}

	var (
		accumulated uint32
		last        step.ActionKey
		haveLast    bool
		// pending holds raw delays waiting for the next action.
		pending []int
	)

	for i, ev := range events {
		if ev.Timestamp > lastTime {
			accumulated = addSaturating(accumulated, ev.Timestamp-lastTime)
		}
		lastTime = ev.Timestamp
		processed = i

		if ev.Kind == TagDelay {
			pending = append(pending, i)
			processed = i + 1
			continue
		}

		candidate, problems := c.describe(i, ev)
		for _, p := range problems {
			c.logger.Debug("%v", p)
		}
		warnings = append(warnings, problems...)

		key := candidate.ConsolidationKey()
		if !haveLast || key != last {
			if accumulated > c.threshold {
				steps = append(steps, codec.NewDelay(accumulated))
			}
			accumulated = 0
			steps = append(steps, candidate)
			last, haveLast = key, true
		}
		stepOf[i] = len(steps) - 1
		for _, d := range pending {
			stepOf[d] = stepOf[i]
		}
		pending = pending[:0]
		processed = i + 1
	}

	if accumulated > c.threshold {
		steps = append(steps, codec.NewDelay(accumulated))
	}

	step.Renumber(steps)
	if len(warnings) > 0 {
		c.logger.Warn("%d of %d events had unresolved fields", len(warnings), len(events))
	}
	return Result{Steps: steps, Warnings: warnings, StepOf: stepOf}
}

// addSaturating adds delta to acc, capping at math.MaxUint32.
func addSaturating(acc uint32, delta uint64) uint32 {
	if delta >= math.MaxUint32 || uint64(acc)+delta >= math.MaxUint32 {
		return math.MaxUint32
	}
	return acc + uint32(delta)
}

// describe builds the step for a non-delay event, substituting placeholders
// for fields it cannot resolve.
func (c *Consolidator) describe(index int, ev RawEvent) (step.Step, []*EventError) {
	var problems []*EventError
	problem := func(field, reason string) {
		problems = append(problems, &EventError{Index: index, Event: ev, Field: field, Reason: reason})
	}

	d := ParseDetails(ev.Details)

	switch ev.Kind {
	case TagKey:
		name := UnknownKey
		if vk, ok := d.Int("VK", 32); ok {
			name = c.keyName(keys.Code(vk))
		} else {
			problem("VK", "missing or not an integer")
		}
		down, ok := pressed(d)
		if !ok {
			problem("State", "missing, treating as released")
		}
		return codec.NewKey(name, !down), problems

	case TagMouseClick:
		name := UnknownButton
		if btn, ok := d.Get("Btn"); ok && btn != "" {
			name = btn
			if canonical, known := keys.MatchButton(btn); known {
				name = canonical
			}
		} else {
			problem("Btn", "missing")
		}
		down, ok := pressed(d)
		if !ok {
			problem("State", "missing, treating as released")
		}
		return codec.NewButton(name, !down), problems

	case TagMouseMove:
		x, okX := d.Int("X", 32)
		if !okX {
			problem("X", "missing or not an integer, using 0")
		}
		y, okY := d.Int("Y", 32)
		if !okY {
			problem("Y", "missing or not an integer, using 0")
		}
		return codec.NewMove(int32(x), int32(y)), problems

	case TagGoto:
		line, ok := d.Int("Line", 32)
		if !ok || line <= 0 {
			problem("Line", "missing or not a positive integer")
			line = 0
		}
		return codec.NewGoto(int(line)), problems

	default:
		tag := ev.Kind
		if tag == "" {
			tag = "Unknown"
		}
		return codec.NewOther(tag, ev.Details), problems
	}
}

// pressed reports whether the State field says "down". Any other value
// means released; ok is false when the field is absent.
func pressed(d Details) (down, ok bool) {
	state, ok := d.Get("State")
	return ok && strings.EqualFold(state, "down"), ok
}
