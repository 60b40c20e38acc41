package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/macrokit/internal/macro/keys"
)

// stroke is one key as a sequence of virtual-key presses: modifiers first,
// then the key itself.
type stroke struct {
	mods []keys.Code
	code keys.Code
}

// namedKeys maps non-rune terminal keys to virtual-key codes. It is a list
// rather than a map because several tcell keys share values (Backspace is
// Ctrl+H, Tab is Ctrl+I, Enter is Ctrl+M); the first match wins.
var namedKeys = []struct {
	key  tcell.Key
	code keys.Code
}{
	{tcell.KeyEnter, keys.CodeReturn},
	{tcell.KeyTab, keys.CodeTab},
	{tcell.KeyBacktab, keys.CodeTab},
	{tcell.KeyBackspace, keys.CodeBack},
	{tcell.KeyBackspace2, keys.CodeBack},
	{tcell.KeyEscape, keys.CodeEscape},
	{tcell.KeyPgUp, 0x21},
	{tcell.KeyPgDn, 0x22},
	{tcell.KeyEnd, 0x23},
	{tcell.KeyHome, 0x24},
	{tcell.KeyLeft, 0x25},
	{tcell.KeyUp, 0x26},
	{tcell.KeyRight, 0x27},
	{tcell.KeyDown, 0x28},
	{tcell.KeyInsert, 0x2D},
	{tcell.KeyDelete, 0x2E},
}

// unshifted and shifted punctuation on a US layout.
var punctuation = map[rune]struct {
	code  keys.Code
	shift bool
}{
	';': {0xBA, false}, ':': {0xBA, true},
	'=': {0xBB, false}, '+': {0xBB, true},
	',': {0xBC, false}, '<': {0xBC, true},
	'-': {0xBD, false}, '_': {0xBD, true},
	'.': {0xBE, false}, '>': {0xBE, true},
	'/': {0xBF, false}, '?': {0xBF, true},
	'`': {0xC0, false}, '~': {0xC0, true},
	'[': {0xDB, false}, '{': {0xDB, true},
	'\\': {0xDC, false}, '|': {0xDC, true},
	']': {0xDD, false}, '}': {0xDD, true},
	'\'': {0xDE, false}, '"': {0xDE, true},
	'!': {'1', true}, '@': {'2', true}, '#': {'3', true},
	'$': {'4', true}, '%': {'5', true}, '^': {'6', true},
	'&': {'7', true}, '*': {'8', true}, '(': {'9', true},
	')': {'0', true},
}

// translateKey maps a terminal key event to virtual-key presses. Runes
// outside the US layout cannot be expressed and report false.
func translateKey(ev *tcell.EventKey) (stroke, bool) {
	var s stroke
	shift := ev.Modifiers()&tcell.ModShift != 0
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		code, shifted, ok := runeCode(ev.Rune())
		if !ok {
			return s, false
		}
		s.code = code
		shift = shift || shifted
	default:
		code, ok := namedCode(k)
		if !ok {
			return s, false
		}
		s.code = code
		if k == tcell.KeyBacktab {
			shift = true
		}
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ && code >= 'A' && code <= 'Z' {
			ctrl = true
		}
	}

	if ctrl {
		s.mods = append(s.mods, keys.CodeLeftCtrl)
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		s.mods = append(s.mods, keys.CodeLeftAlt)
	}
	if shift {
		s.mods = append(s.mods, keys.CodeLeftShift)
	}
	return s, true
}

func namedCode(k tcell.Key) (keys.Code, bool) {
	for _, nk := range namedKeys {
		if nk.key == k {
			return nk.code, true
		}
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF24 {
		return keys.CodeF1 + keys.Code(k-tcell.KeyF1), true
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return keys.Code('A' + int(k-tcell.KeyCtrlA)), true
	}
	return 0, false
}

func runeCode(r rune) (code keys.Code, shift, ok bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return keys.Code(r - 'a' + 'A'), false, true
	case r >= 'A' && r <= 'Z':
		return keys.Code(r), true, true
	case r >= '0' && r <= '9':
		return keys.Code(r), false, true
	case r == ' ':
		return keys.CodeSpace, false, true
	}
	if p, found := punctuation[r]; found {
		return p.code, p.shift, true
	}
	return 0, false, false
}

// ParseStopKey parses the key that ends a terminal recording: "F1".."F24",
// "Esc" or "Ctrl+A".."Ctrl+Z".
func ParseStopKey(name string) (tcell.Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "esc" || n == "escape":
		return tcell.KeyEscape, nil
	case strings.HasPrefix(n, "f"):
		if i, err := strconv.Atoi(n[1:]); err == nil && i >= 1 && i <= 24 {
			return tcell.KeyF1 + tcell.Key(i-1), nil
		}
	case strings.HasPrefix(n, "ctrl+") && len(n) == len("ctrl+")+1:
		if c := n[len(n)-1]; c >= 'a' && c <= 'z' {
			return tcell.KeyCtrlA + tcell.Key(c-'a'), nil
		}
	}
	return 0, fmt.Errorf("unsupported stop key %q", name)
}
