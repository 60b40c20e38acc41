package keys

import (
	"strings"

	"golang.org/x/text/cases"
)

// Buttons is the known mouse button set, in display order.
var Buttons = []string{"Left", "Right", "Middle", "X1", "X2"}

// MatchButton matches name against the known button set without regard to
// case and returns the canonical spelling.
func MatchButton(name string) (string, bool) {
	// A Caser keeps state, so each call gets its own.
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	if want == "" {
		return "", false
	}
	for _, b := range Buttons {
		if fold.String(b) == want {
			return b, true
		}
	}
	return "", false
}

// ButtonID returns the lowercase identifier used by macro files
// ("left", "x1", ...).
func ButtonID(name string) (string, bool) {
	b, ok := MatchButton(name)
	if !ok {
		return "", false
	}
	return strings.ToLower(b), true
}
