// Package transform applies bulk edits to macro timelines.
package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/step"
)

// indices returns selected, or every index of steps when selected is nil.
func indices(steps []step.Step, selected []int) []int {
	if selected != nil {
		return selected
	}
	all := make([]int, len(steps))
	for i := range all {
		all[i] = i
	}
	return all
}

// OffsetDelays adds offset milliseconds to every selected Delay step, on
// both ends of random ranges. Results are clamped to 0..math.MaxUint32.
// A nil selection means every step. It returns the number of steps
// changed.
func OffsetDelays(steps []step.Step, selected []int, offset int64) int {
	changed := 0
	for _, i := range indices(steps, selected) {
		if i < 0 || i >= len(steps) || steps[i].Kind != step.KindDelay {
			continue
		}
		s := &steps[i]
		s.Delay.Min = clampUint32(int64(s.Delay.Min) + clampOffset(offset))
		if s.Delay.Random {
			s.Delay.Max = clampUint32(int64(s.Delay.Max) + clampOffset(offset))
		}
		s.Description = codec.Encode(*s)
		changed++
	}
	return changed
}

// OffsetCoordinates shifts every selected cursor move, and every selected
// click whose description carries a position, by (dx, dy). Coordinates
// are read back from the description; steps without extractable
// coordinates are left untouched. It returns the number of steps changed.
func OffsetCoordinates(steps []step.Step, selected []int, dx, dy int64) int {
	changed := 0
	for _, i := range indices(steps, selected) {
		if i < 0 || i >= len(steps) {
			continue
		}
		s := &steps[i]
		if s.Kind != step.KindMouseMove && !s.Kind.IsButton() {
			continue
		}
		p, ok := codec.ExtractCoordinates(s.Description)
		if !ok {
			continue
		}

		moved := step.Point{
			X: clampInt32(int64(p.X) + clampOffset(dx)),
			Y: clampInt32(int64(p.Y) + clampOffset(dy)),
		}
		if s.Kind == step.KindMouseMove {
			s.Point = moved
		} else {
			s.Button.At = moved
			s.Button.HasAt = true
		}
		s.Description = codec.Encode(*s)
		changed++
	}
	return changed
}

// RemoveDelays deletes the selected Delay steps from l. A nil selection
// means every step.
func RemoveDelays(l *step.List, selected []int) int {
	return l.DeleteFunc(selected, func(s step.Step) bool {
		return s.Kind == step.KindDelay
	})
}

// ParseOffset parses a signed millisecond offset such as "-20" or "+150".
func ParseOffset(text string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, &codec.ValidationError{Field: "offset", Message: "offset must be a whole number of milliseconds, got " + strconv.Quote(text)}
	}
	return n, nil
}

// ParseCoordinateOffset parses "dx,dy" (or "dx dy") into a pixel offset.
func ParseCoordinateOffset(text string) (dx, dy int64, err error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, &codec.ValidationError{Field: "offset", Message: "expected two numbers as dx,dy, got " + strconv.Quote(text)}
	}
	dx, errX := strconv.ParseInt(fields[0], 10, 64)
	if errX != nil {
		return 0, 0, &codec.ValidationError{Field: "x", Message: "X offset must be a whole number, got " + strconv.Quote(fields[0])}
	}
	dy, errY := strconv.ParseInt(fields[1], 10, 64)
	if errY != nil {
		return 0, 0, &codec.ValidationError{Field: "y", Message: "Y offset must be a whole number, got " + strconv.Quote(fields[1])}
	}
	return dx, dy, nil
}

// clampOffset bounds an offset so that adding it to any 32-bit value
// cannot overflow int64.
func clampOffset(n int64) int64 {
	const limit = 1 << 33
	switch {
	case n > limit:
		return limit
	case n < -limit:
		return -limit
	default:
		return n
	}
}

func clampUint32(n int64) uint32 {
	switch {
	case n < 0:
		return 0
	case n > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(n)
	}
}

func clampInt32(n int64) int32 {
	switch {
	case n < math.MinInt32:
		return math.MinInt32
	case n > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(n)
	}
}
