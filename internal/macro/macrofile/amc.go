package macrofile

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/keys"
)

// CurrentVersion is the only macro file version understood.
const CurrentVersion = 1

// Ext is the macro file extension.
const Ext = ".amc"

// EventType is the "type" field of a macro file event.
type EventType string

// Event types.
const (
	TypeKey        EventType = "key"
	TypeMouseMove  EventType = "mouseMove"
	TypeMouseClick EventType = "mouseClick"
	TypeGoto       EventType = "goto"
)

// Key and button states.
const (
	StateDown = "down"
	StateUp   = "up"
)

// Event is one entry of a macro file. Only the fields of its Type are
// meaningful.
type Event struct {
	// Time is milliseconds since the start of the recording.
	Time uint64
	Type EventType

	KeyCode keys.Code
	// State is StateDown or StateUp for keys and buttons.
	State string

	// Button is a lowercase button id ("left", "x1", ...).
	Button string
	X      int32
	Y      int32

	// TargetLine is the 1-based event index a goto jumps to.
	TargetLine int
}

// File is a loaded macro file.
type File struct {
	Version int
	Events  []Event
	// Skipped describes items dropped during loading, in file order.
	Skipped []string
}

// Load reads the macro file at path. Items that are not valid events are
// skipped and listed in File.Skipped; a file of another version, or one
// that is not a macro file, is rejected.
func Load(path string, logger *logging.Logger) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, opError("load", path, err)
	}
	f, err := Parse(data, logger)
	if err != nil {
		return nil, opError("load", path, err)
	}
	return f, nil
}

// Parse decodes macro file contents.
func Parse(data []byte, logger *logging.Logger) (*File, error) {
	logger = logging.OrNull(logger).WithComponent("macrofile")

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidFormat)
	}
	root := gjson.ParseBytes(data)

	version := root.Get("version")
	events := root.Get("events")
	if !version.Exists() || !events.IsArray() {
		return nil, fmt.Errorf("%w: missing version or events", ErrInvalidFormat)
	}
	if !isInt(version) || version.Int() != CurrentVersion {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version.Raw)
	}

	f := &File{Version: CurrentVersion}
	index := 0
	events.ForEach(func(_, item gjson.Result) bool {
		ev, err := parseEvent(item)
		if err != nil {
			msg := fmt.Sprintf("item %d: %v", index, err)
			logger.Warn("skipping %s", msg)
			f.Skipped = append(f.Skipped, msg)
		} else {
			f.Events = append(f.Events, ev)
		}
		index++
		return true
	})
	return f, nil
}

func parseEvent(item gjson.Result) (Event, error) {
	var ev Event

	t := item.Get("time")
	if !isUint(t) {
		return ev, fmt.Errorf("missing or invalid time")
	}
	ev.Time = t.Uint()

	typ := item.Get("type")
	if typ.Type != gjson.String {
		return ev, fmt.Errorf("missing or invalid type")
	}
	ev.Type = EventType(typ.Str)

	switch ev.Type {
	case TypeKey:
		code, state := item.Get("keyCode"), item.Get("state")
		if !isInt(code) || !validState(state) {
			return ev, fmt.Errorf("invalid key event")
		}
		ev.KeyCode = keys.Code(code.Int())
		ev.State = state.Str

	case TypeMouseMove:
		x, y, ok := point(item)
		if !ok {
			return ev, fmt.Errorf("invalid mouseMove event")
		}
		ev.X, ev.Y = x, y

	case TypeMouseClick:
		btn, state := item.Get("button"), item.Get("state")
		x, y, ok := point(item)
		if btn.Type != gjson.String || !validState(state) || !ok {
			return ev, fmt.Errorf("invalid mouseClick event")
		}
		if _, known := keys.MatchButton(btn.Str); !known || btn.Str != strings.ToLower(btn.Str) {
			return ev, fmt.Errorf("unknown mouse button %q", btn.Str)
		}
		ev.Button, ev.State = btn.Str, state.Str
		ev.X, ev.Y = x, y

	case TypeGoto:
		line := item.Get("targetLine")
		if !isInt(line) {
			return ev, fmt.Errorf("invalid goto event")
		}
		ev.TargetLine = int(line.Int())

	default:
		return ev, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}

func isInt(r gjson.Result) bool {
	return r.Type == gjson.Number && !strings.ContainsAny(r.Raw, ".eE")
}

func isUint(r gjson.Result) bool {
	return isInt(r) && !strings.HasPrefix(r.Raw, "-")
}

func validState(r gjson.Result) bool {
	return r.Type == gjson.String && (r.Str == StateDown || r.Str == StateUp)
}

func point(item gjson.Result) (x, y int32, ok bool) {
	rx, ry := item.Get("x"), item.Get("y")
	if !isInt(rx) || !isInt(ry) {
		return 0, 0, false
	}
	vx, vy := rx.Int(), ry.Int()
	if vx < math.MinInt32 || vx > math.MaxInt32 || vy < math.MinInt32 || vy > math.MaxInt32 {
		return 0, 0, false
	}
	return int32(vx), int32(vy), true
}

// Marshal encodes events as an indented version 1 macro file.
func Marshal(events []Event) ([]byte, error) {
	doc := []byte(`{"version":` + strconv.Itoa(CurrentVersion) + `,"events":[]}`)
	for i, ev := range events {
		obj, err := marshalEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		doc, err = sjson.SetRawBytes(doc, "events.-1", obj)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return pretty.PrettyOptions(doc, &pretty.Options{Width: 80, Indent: "    "}), nil
}

func marshalEvent(ev Event) ([]byte, error) {
	obj := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			obj, err = sjson.SetBytes(obj, path, value)
		}
	}

	set("time", ev.Time)
	set("type", string(ev.Type))
	switch ev.Type {
	case TypeKey:
		set("keyCode", int(ev.KeyCode))
		set("state", ev.State)
	case TypeMouseMove:
		set("x", ev.X)
		set("y", ev.Y)
	case TypeMouseClick:
		set("button", ev.Button)
		set("state", ev.State)
		set("x", ev.X)
		set("y", ev.Y)
	case TypeGoto:
		set("targetLine", ev.TargetLine)
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return obj, err
}

// Save writes events to path atomically.
func Save(path string, events []Event) error {
	data, err := Marshal(events)
	if err != nil {
		return opError("save", path, err)
	}
	return opError("save", path, writeFileAtomic(path, data))
}
