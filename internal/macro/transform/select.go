package transform

import (
	"github.com/tidwall/match"

	"github.com/dshills/macrokit/internal/macro/step"
)

// SelectMatching returns the indices of steps whose description matches
// pattern. The pattern uses * for any run of characters and ? for a single
// character ("Press *", "Move cursor * 100 *"). Matching is case-sensitive.
func SelectMatching(steps []step.Step, pattern string) []int {
	out := []int{}
	for i, s := range steps {
		if match.Match(s.Description, pattern) {
			out = append(out, i)
		}
	}
	return out
}

// SelectKind returns the indices of steps of kind k.
func SelectKind(steps []step.Step, k step.Kind) []int {
	out := []int{}
	for i, s := range steps {
		if s.Kind == k {
			out = append(out, i)
		}
	}
	return out
}
