package macrofile

import (
	"fmt"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/keys"
	"github.com/dshills/macrokit/internal/macro/step"
)

// ToRaw renders macro file events as the raw capture stream the
// consolidator reads.
func ToRaw(events []Event) []consolidate.RawEvent {
	out := make([]consolidate.RawEvent, 0, len(events))
	for _, ev := range events {
		raw := consolidate.RawEvent{Timestamp: ev.Time}
		switch ev.Type {
		case TypeKey:
			raw.Kind = consolidate.TagKey
			raw.Details = fmt.Sprintf("VK=%d, State=%s", ev.KeyCode, ev.State)
		case TypeMouseMove:
			raw.Kind = consolidate.TagMouseMove
			raw.Details = fmt.Sprintf("X=%d, Y=%d", ev.X, ev.Y)
		case TypeMouseClick:
			raw.Kind = consolidate.TagMouseClick
			raw.Details = fmt.Sprintf("Btn=%s, State=%s, X=%d, Y=%d", ev.Button, ev.State, ev.X, ev.Y)
		case TypeGoto:
			raw.Kind = consolidate.TagGoto
			raw.Details = fmt.Sprintf("Line=%d", ev.TargetLine)
		default:
			raw.Kind = string(ev.Type)
		}
		out = append(out, raw)
	}
	return out
}

// FromSteps converts an edited timeline back into macro file events.
//
// Delays become gaps between event times; random delays use their
// minimum. Clicks without a position of their own happen at the last cursor
// position. Goto targets name step numbers and are rewritten to the index
// of the first event produced at or after that step. Steps that cannot be
// replayed (unresolved keys or buttons, unresolved gotos, unmodelled
// events) are logged and left out.
func FromSteps(steps []step.Step, logger *logging.Logger) []Event {
	logger = logging.OrNull(logger).WithComponent("macrofile")

	var (
		events []Event
		now    uint64
		cursor step.Point
		// firstEvent[i] is the index of the first event emitted for
		// steps[i] or, when it emits none, for the steps after it.
		firstEvent = make([]int, len(steps))
		gotos      []int
	)

	skip := func(s step.Step, reason string) {
		logger.Warn("step %d (%s) left out: %s", s.Seq, s.Description, reason)
	}

	for i, s := range steps {
		firstEvent[i] = len(events)

		switch {
		case s.Kind == step.KindDelay:
			now += uint64(s.Delay.Min)

		case s.Kind.IsKey():
			code, ok := keys.Lookup(s.Key)
			if !ok {
				skip(s, "unknown key")
				continue
			}
			events = append(events, Event{Time: now, Type: TypeKey, KeyCode: code, State: state(s.Kind == step.KindKeyPress)})

		case s.Kind.IsButton():
			id, ok := keys.ButtonID(s.Button.Name)
			if !ok {
				skip(s, "unknown button")
				continue
			}
			at := cursor
			if s.Button.HasAt {
				at = s.Button.At
			}
			events = append(events, Event{Time: now, Type: TypeMouseClick, Button: id, State: state(s.Kind == step.KindMouseClick), X: at.X, Y: at.Y})

		case s.Kind == step.KindMouseMove:
			cursor = s.Point
			events = append(events, Event{Time: now, Type: TypeMouseMove, X: s.Point.X, Y: s.Point.Y})

		case s.Kind == step.KindGoto:
			if s.Line <= 0 {
				skip(s, "unresolved target line")
				continue
			}
			gotos = append(gotos, len(events))
			events = append(events, Event{Time: now, Type: TypeGoto, TargetLine: s.Line})

		default:
			skip(s, "not replayable")
		}
	}

	for _, gi := range gotos {
		line := events[gi].TargetLine
		if line > len(steps) {
			// Left pointing past the end; playback stops there.
			continue
		}
		events[gi].TargetLine = firstEvent[line-1] + 1
	}
	return events
}

func state(down bool) string {
	if down {
		return StateDown
	}
	return StateUp
}

// ResolveGotos rewrites Goto steps consolidated from a macro file so they
// name step numbers again. In the file a target is a 1-based event index;
// stepOf is the consolidator's event-to-step mapping for that file's
// ToRaw stream. A target event maps to the action step it became. Targets
// past the last event stay past the end of the timeline. steps is
// modified in place.
func ResolveGotos(steps []step.Step, stepOf []int) {
	for i := range steps {
		s := &steps[i]
		if s.Kind != step.KindGoto || s.Line < 1 {
			continue
		}
		target := len(steps) + 1
		if s.Line <= len(stepOf) && stepOf[s.Line-1] >= 0 {
			target = stepOf[s.Line-1] + 1
		}
		if target != s.Line {
			s.Line = target
			s.Description = codec.Encode(*s)
		}
	}
}
