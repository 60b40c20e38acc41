package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a Windows virtual-key code as reported by the capture layer.
type Code int

// Frequently referenced virtual-key codes.
const (
	CodeBack      Code = 0x08
	CodeTab       Code = 0x09
	CodeReturn    Code = 0x0D
	CodeShift     Code = 0x10
	CodeControl   Code = 0x11
	CodeMenu      Code = 0x12
	CodeEscape    Code = 0x1B
	CodeSpace     Code = 0x20
	CodeLeftShift Code = 0xA0
	CodeLeftCtrl  Code = 0xA2
	CodeLeftAlt   Code = 0xA4
	CodeF1        Code = 0x70
	CodeF12       Code = 0x7B
)

// codeNames maps virtual-key codes to the platform key names shown in
// step descriptions. Letters and digits are filled in by init.
var codeNames = map[Code]string{
	0x03: "Cancel",
	0x08: "Back",
	0x09: "Tab",
	0x0C: "Clear",
	0x0D: "Return",
	0x10: "LeftShift",
	0x11: "LeftCtrl",
	0x12: "LeftAlt",
	0x13: "Pause",
	0x14: "Capital",
	0x15: "KanaMode",
	0x17: "JunjaMode",
	0x18: "FinalMode",
	0x19: "HanjaMode",
	0x1B: "Escape",
	0x1C: "ImeConvert",
	0x1D: "ImeNonConvert",
	0x1E: "ImeAccept",
	0x1F: "ImeModeChange",
	0x20: "Space",
	0x21: "PageUp",
	0x22: "Next",
	0x23: "End",
	0x24: "Home",
	0x25: "Left",
	0x26: "Up",
	0x27: "Right",
	0x28: "Down",
	0x29: "Select",
	0x2A: "Print",
	0x2B: "Execute",
	0x2C: "Snapshot",
	0x2D: "Insert",
	0x2E: "Delete",
	0x2F: "Help",
	0x5B: "LWin",
	0x5C: "RWin",
	0x5D: "Apps",
	0x5F: "Sleep",
	0x6A: "Multiply",
	0x6B: "Add",
	0x6C: "Separator",
	0x6D: "Subtract",
	0x6E: "Decimal",
	0x6F: "Divide",
	0x90: "NumLock",
	0x91: "Scroll",
	0xA0: "LeftShift",
	0xA1: "RightShift",
	0xA2: "LeftCtrl",
	0xA3: "RightCtrl",
	0xA4: "LeftAlt",
	0xA5: "RightAlt",
	0xA6: "BrowserBack",
	0xA7: "BrowserForward",
	0xA8: "BrowserRefresh",
	0xA9: "BrowserStop",
	0xAA: "BrowserSearch",
	0xAB: "BrowserFavorites",
	0xAC: "BrowserHome",
	0xAD: "VolumeMute",
	0xAE: "VolumeDown",
	0xAF: "VolumeUp",
	0xB0: "MediaNextTrack",
	0xB1: "MediaPreviousTrack",
	0xB2: "MediaStop",
	0xB3: "MediaPlayPause",
	0xB4: "LaunchMail",
	0xB5: "SelectMedia",
	0xB6: "LaunchApplication1",
	0xB7: "LaunchApplication2",
	0xBA: "OemSemicolon",
	0xBB: "OemPlus",
	0xBC: "OemComma",
	0xBD: "OemMinus",
	0xBE: "OemPeriod",
	0xBF: "OemQuestion",
	0xC0: "OemTilde",
	0xDB: "OemOpenBrackets",
	0xDC: "OemPipe",
	0xDD: "OemCloseBrackets",
	0xDE: "OemQuotes",
	0xDF: "Oem8",
	0xE2: "OemBackslash",
	0xE5: "ImeProcessed",
	0xF6: "Attn",
	0xF7: "CrSel",
	0xF8: "ExSel",
	0xF9: "EraseEof",
	0xFA: "Play",
	0xFB: "Zoom",
	0xFD: "Pa1",
	0xFE: "OemClear",
}

// nameCodes maps lowercase key names and common aliases to codes.
var nameCodes = map[string]Code{
	"enter":       0x0D,
	"backspace":   0x08,
	"esc":         0x1B,
	"capslock":    0x14,
	"pgup":        0x21,
	"prior":       0x21,
	"pagedown":    0x22,
	"pgdn":        0x22,
	"printscreen": 0x2C,
	"ins":         0x2D,
	"del":         0x2E,
	"shift":       0x10,
	"ctrl":        0x11,
	"control":     0x11,
	"alt":         0x12,
	"menu":        0x12,
	"win":         0x5B,
	"scrolllock":  0x91,
}

func init() {
	for c := Code('A'); c <= 'Z'; c++ {
		codeNames[c] = string(rune(c))
	}
	for c := Code('0'); c <= '9'; c++ {
		codeNames[c] = "D" + string(rune(c))
	}
	for i := 0; i <= 9; i++ {
		codeNames[Code(0x60+i)] = fmt.Sprintf("NumPad%d", i)
	}
	for i := 0; i < 24; i++ {
		codeNames[CodeF1+Code(i)] = fmt.Sprintf("F%d", i+1)
	}
	// Generic modifier codes share names with the left-hand variants and
	// aliases take precedence, so neither is overwritten here.
	for c, name := range codeNames {
		if c == CodeShift || c == CodeControl || c == CodeMenu {
			continue
		}
		lower := strings.ToLower(name)
		if _, ok := nameCodes[lower]; ok {
			continue
		}
		nameCodes[lower] = c
	}
}

// Name resolves a virtual-key code to its key name.
// Unknown codes resolve to "VK={code}".
func Name(c Code) string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("VK=%d", int(c))
}

// Lookup resolves a key name back to a virtual-key code.
// Matching is case-insensitive and accepts single letters and digits,
// common aliases (Enter, Esc, Ctrl), and the "VK=n" fallback form.
func Lookup(name string) (Code, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}

	if rest, ok := strings.CutPrefix(strings.ToUpper(name), "VK="); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 0xFF {
			return 0, false
		}
		return Code(n), true
	}

	if len(name) == 1 {
		ch := strings.ToUpper(name)[0]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return Code(ch), true
		}
	}

	c, ok := nameCodes[strings.ToLower(name)]
	return c, ok
}
