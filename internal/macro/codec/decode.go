package codec

import (
	"strconv"
	"strings"

	"github.com/dshills/macrokit/internal/macro/keys"
	"github.com/dshills/macrokit/internal/macro/step"
)

// Form holds step fields as the user types them. Decode fills a Form from
// an existing step; Build validates a Form and produces a step.
type Form struct {
	Kind step.Kind

	MinDelay string
	MaxDelay string
	Random   bool

	KeyName string

	// Button is the button name. X and Y are shared by moves and by clicks
	// carrying a position.
	Button string
	X      string
	Y      string

	Line string

	Comment string
}

// Decode populates a form from s for editing.
//
// Delay and Goto fields come from the stored numbers when they are set.
// Everything else is parsed out of the description. Decode never fails
// hard: fields whose part of the description does not match are left blank
// and reported through a *DecodeMismatch, next to the partial form.
func Decode(s step.Step) (Form, error) {
	f := Form{Kind: s.Kind, Comment: s.Comment}
	var blank []string

	switch {
	case s.Kind == step.KindDelay:
		switch {
		case s.Delay.Min > 0 || s.Delay.Random:
			f.MinDelay = strconv.FormatUint(uint64(s.Delay.Min), 10)
			if s.Delay.Random {
				f.Random = true
				f.MaxDelay = strconv.FormatUint(uint64(s.Delay.Max), 10)
			}
		default:
			lo, hi, random, ok := parseDelay(s.Description)
			if !ok {
				blank = append(blank, "min")
				break
			}
			f.MinDelay, f.MaxDelay, f.Random = lo, hi, random
		}

	case s.Kind.IsKey():
		word, name, _ := strings.Cut(s.Description, " ")
		switch word {
		case "Press":
			f.Kind = step.KindKeyPress
		case "Release":
			f.Kind = step.KindKeyRelease
		default:
			blank = append(blank, "action")
		}
		if name == "" {
			blank = append(blank, "key")
		}
		f.KeyName = name

	case s.Kind.IsButton():
		tokens := strings.Fields(s.Description)
		if len(tokens) > 0 {
			switch tokens[0] {
			case "Click":
				f.Kind = step.KindMouseClick
			case "Release":
				f.Kind = step.KindMouseRelease
			default:
				blank = append(blank, "action")
			}
		}
		if len(tokens) < 2 {
			blank = append(blank, "button")
			break
		}
		name, ok := keys.MatchButton(tokens[1])
		if !ok {
			blank = append(blank, "button")
		}
		f.Button = name
		if p, ok := atPosition(s.Description); ok {
			f.X = strconv.Itoa(int(p.X))
			f.Y = strconv.Itoa(int(p.Y))
		}

	case s.Kind == step.KindMouseMove:
		p, ok := movePosition(s.Description)
		if !ok {
			blank = append(blank, "x", "y")
			break
		}
		f.X = strconv.Itoa(int(p.X))
		f.Y = strconv.Itoa(int(p.Y))

	case s.Kind == step.KindGoto:
		if s.Line > 0 {
			f.Line = strconv.Itoa(s.Line)
			break
		}
		_, n, ok := strings.Cut(s.Description, "#")
		if line, err := strconv.Atoi(strings.TrimSpace(n)); ok && err == nil && line > 0 {
			f.Line = strconv.Itoa(line)
		} else {
			blank = append(blank, "line")
		}
	}

	if len(blank) > 0 {
		return f, &DecodeMismatch{Kind: s.Kind, Description: s.Description, Fields: blank}
	}
	return f, nil
}

// parseDelay reads "Delay {n} ms." and "Delay from {lo} to {hi} ms.".
func parseDelay(desc string) (lo, hi string, random, ok bool) {
	body, found := strings.CutPrefix(desc, "Delay ")
	if !found {
		return "", "", false, false
	}
	body, found = strings.CutSuffix(body, " ms.")
	if !found {
		return "", "", false, false
	}

	if r, found := strings.CutPrefix(body, "from "); found {
		lo, hi, found = strings.Cut(r, " to ")
		if !found || !isUint(lo) || !isUint(hi) {
			return "", "", false, false
		}
		return lo, hi, true, true
	}
	if !isUint(body) {
		return "", "", false, false
	}
	return body, "", false, true
}

func isUint(s string) bool {
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

// Build validates f and constructs the step it describes, with a freshly
// encoded description. On failure it returns a *ValidationError naming the
// first offending field, and no step.
func Build(f Form) (step.Step, error) {
	var s step.Step

	switch f.Kind {
	case step.KindDelay:
		lo, err := strconv.ParseUint(strings.TrimSpace(f.MinDelay), 10, 32)
		if err != nil || lo == 0 {
			return step.Step{}, newValidationError("min", "delay must be a positive whole number of milliseconds, got %q", f.MinDelay)
		}
		s = step.Step{Kind: step.KindDelay, Delay: step.Delay{Min: uint32(lo)}}
		if f.Random {
			hi, err := strconv.ParseUint(strings.TrimSpace(f.MaxDelay), 10, 32)
			if err != nil {
				return step.Step{}, newValidationError("max", "maximum delay must be a whole number of milliseconds, got %q", f.MaxDelay)
			}
			if hi < lo {
				return step.Step{}, newValidationError("max", "maximum delay %d is less than minimum %d", hi, lo)
			}
			s.Delay.Max = uint32(hi)
			s.Delay.Random = true
		}

	case step.KindKeyPress, step.KindKeyRelease:
		name := strings.TrimSpace(f.KeyName)
		if name == "" {
			return step.Step{}, newValidationError("key", "key name is required")
		}
		s = step.Step{Kind: f.Kind, Key: name}

	case step.KindMouseClick, step.KindMouseRelease:
		if strings.TrimSpace(f.Button) == "" {
			return step.Step{}, newValidationError("button", "select a mouse button")
		}
		name, ok := keys.MatchButton(f.Button)
		if !ok {
			return step.Step{}, newValidationError("button", "unknown mouse button %q", f.Button)
		}
		s = step.Step{Kind: f.Kind, Button: step.Button{Name: name}}
		if strings.TrimSpace(f.X) != "" || strings.TrimSpace(f.Y) != "" {
			p, err := parsePoint(f.X, f.Y)
			if err != nil {
				return step.Step{}, err
			}
			s.Button.At = p
			s.Button.HasAt = true
		}

	case step.KindMouseMove:
		p, err := parsePoint(f.X, f.Y)
		if err != nil {
			return step.Step{}, err
		}
		s = step.Step{Kind: step.KindMouseMove, Point: p}

	case step.KindGoto:
		line, err := strconv.Atoi(strings.TrimSpace(f.Line))
		if err != nil || line <= 0 {
			return step.Step{}, newValidationError("line", "target line must be a positive whole number, got %q", f.Line)
		}
		s = step.Step{Kind: step.KindGoto, Line: line}

	default:
		return step.Step{}, newValidationError("kind", "%v steps cannot be built from a form", f.Kind)
	}

	s.Comment = strings.TrimSpace(f.Comment)
	return Refresh(s), nil
}

func parsePoint(xs, ys string) (step.Point, error) {
	x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
	if err != nil {
		return step.Point{}, newValidationError("x", "X must be a whole number, got %q", xs)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
	if err != nil {
		return step.Point{}, newValidationError("y", "Y must be a whole number, got %q", ys)
	}
	return step.Point{X: int32(x), Y: int32(y)}, nil
}

// ExtractCoordinates pulls a screen position out of a description. It
// understands the cursor move form "Move cursor {x} {y} ..." and the
// "... at ({x}, {y})" suffix of positioned clicks.
func ExtractCoordinates(desc string) (step.Point, bool) {
	if strings.HasPrefix(desc, "Move cursor ") {
		return movePosition(desc)
	}
	return atPosition(desc)
}

func movePosition(desc string) (step.Point, bool) {
	tokens := strings.Fields(desc)
	if len(tokens) < 4 || tokens[0] != "Move" || tokens[1] != "cursor" {
		return step.Point{}, false
	}
	x, errX := strconv.ParseInt(tokens[2], 10, 32)
	y, errY := strconv.ParseInt(tokens[3], 10, 32)
	if errX != nil || errY != nil {
		return step.Point{}, false
	}
	return step.Point{X: int32(x), Y: int32(y)}, true
}

func atPosition(desc string) (step.Point, bool) {
	i := strings.LastIndex(desc, "at (")
	if i < 0 {
		return step.Point{}, false
	}
	inner, _, ok := strings.Cut(desc[i+len("at ("):], ")")
	if !ok {
		return step.Point{}, false
	}
	xs, ys, ok := strings.Cut(inner, ",")
	if !ok {
		return step.Point{}, false
	}
	x, errX := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
	y, errY := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
	if errX != nil || errY != nil {
		return step.Point{}, false
	}
	return step.Point{X: int32(x), Y: int32(y)}, true
}
