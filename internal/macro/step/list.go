package step

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Step errors.
var (
	// ErrUnknownKind indicates a kind name that does not parse.
	ErrUnknownKind = errors.New("unknown step kind")

	// ErrIndexOutOfRange indicates a step index outside the list.
	ErrIndexOutOfRange = errors.New("step index out of range")

	// ErrInvalidSelection indicates a malformed selection expression.
	ErrInvalidSelection = errors.New("invalid step selection")
)

// List is an ordered macro timeline. Position in the slice is the only
// ordering authority; sequence numbers are recomputed after every
// structural change.
//
// List is not safe for concurrent use.
type List struct {
	steps []Step
}

// NewList creates a list holding copies of steps, renumbered from 1.
func NewList(steps []Step) *List {
	l := &List{steps: slices.Clone(steps)}
	l.Renumber()
	return l
}

// Len returns the number of steps.
func (l *List) Len() int {
	return len(l.steps)
}

// At returns a copy of the step at index i.
func (l *List) At(i int) (Step, error) {
	if i < 0 || i >= len(l.steps) {
		return Step{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return l.steps[i], nil
}

// Steps returns a copy of all steps in order.
func (l *List) Steps() []Step {
	return slices.Clone(l.steps)
}

// Renumber assigns sequence numbers 1..N in list order.
func (l *List) Renumber() {
	Renumber(l.steps)
}

// Renumber assigns sequence numbers 1..N in slice order.
func Renumber(steps []Step) {
	for i := range steps {
		steps[i].Seq = i + 1
	}
}

// Insert places steps after index after. An index of -1 inserts at the
// front; an index at or past the last step appends. It returns the index
// of the first inserted step.
func (l *List) Insert(after int, steps ...Step) int {
	pos := after + 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.steps) {
		pos = len(l.steps)
	}
	l.steps = slices.Insert(l.steps, pos, steps...)
	l.Renumber()
	return pos
}

// Append adds steps at the end.
func (l *List) Append(steps ...Step) {
	l.Insert(len(l.steps), steps...)
}

// Replace swaps the step at index i for s.
func (l *List) Replace(i int, s Step) error {
	if i < 0 || i >= len(l.steps) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	l.steps[i] = s
	l.Renumber()
	return nil
}

// Delete removes the steps at the given indices. Out-of-range and duplicate
// indices are ignored. It returns the number of steps removed.
func (l *List) Delete(indices ...int) int {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(l.steps) {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := l.steps[:0]
	for i, s := range l.steps {
		if !drop[i] {
			kept = append(kept, s)
		}
	}
	l.steps = kept
	l.Renumber()
	return len(drop)
}

// DeleteFunc removes every step at the given indices for which match
// returns true. A nil indices slice considers every step.
func (l *List) DeleteFunc(indices []int, match func(Step) bool) int {
	if indices == nil {
		indices = l.All()
	}
	var drop []int
	for _, i := range indices {
		if i >= 0 && i < len(l.steps) && match(l.steps[i]) {
			drop = append(drop, i)
		}
	}
	return l.Delete(drop...)
}

// MoveUp swaps the step at i with its predecessor.
func (l *List) MoveUp(i int) error {
	if i <= 0 || i >= len(l.steps) {
		return fmt.Errorf("%w: cannot move %d up", ErrIndexOutOfRange, i)
	}
	l.steps[i-1], l.steps[i] = l.steps[i], l.steps[i-1]
	l.Renumber()
	return nil
}

// MoveDown swaps the step at i with its successor.
func (l *List) MoveDown(i int) error {
	if i < 0 || i >= len(l.steps)-1 {
		return fmt.Errorf("%w: cannot move %d down", ErrIndexOutOfRange, i)
	}
	l.steps[i], l.steps[i+1] = l.steps[i+1], l.steps[i]
	l.Renumber()
	return nil
}

// Copy returns clones of the steps at the given indices, in list order.
func (l *List) Copy(indices ...int) []Step {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make([]Step, 0, len(sorted))
	for _, i := range sorted {
		if i >= 0 && i < len(l.steps) {
			out = append(out, l.steps[i].Clone())
		}
	}
	return out
}

// Cut copies the steps at the given indices and removes them.
func (l *List) Cut(indices ...int) []Step {
	clip := l.Copy(indices...)
	l.Delete(indices...)
	return clip
}

// Paste inserts clones of clip after index after, leaving clip reusable.
func (l *List) Paste(after int, clip []Step) int {
	cloned := make([]Step, len(clip))
	for i, s := range clip {
		cloned[i] = s.Clone()
	}
	return l.Insert(after, cloned...)
}

// SetComment sets the comment of the step at i. Blank text clears it;
// otherwise surrounding space is trimmed.
func (l *List) SetComment(i int, text string) error {
	if i < 0 || i >= len(l.steps) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	l.steps[i].Comment = strings.TrimSpace(text)
	return nil
}

// Clear removes every step.
func (l *List) Clear() {
	l.steps = nil
}

// All returns the indices of every step.
func (l *List) All() []int {
	out := make([]int, len(l.steps))
	for i := range out {
		out[i] = i
	}
	return out
}

// ParseSelection parses a 1-based selection such as "1-3,7" into 0-based
// indices for a list of n steps. An empty expression selects every step.
func ParseSelection(expr string, n int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "all" {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	var out []int
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if a, b, ok := strings.Cut(part, "-"); ok {
			lo, hi = a, b
		}

		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}
		if from < 1 || to > n || from > to {
			return nil, fmt.Errorf("%w: %q outside 1-%d", ErrInvalidSelection, part, n)
		}
		for seq := from; seq <= to; seq++ {
			out = append(out, seq-1)
		}
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}
