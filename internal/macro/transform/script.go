package transform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/keys"
	"github.com/dshills/macrokit/internal/macro/step"
)

// ScriptFunc is the global function a script must define.
const ScriptFunc = "transform"

// ErrNoTransform indicates a script that does not define transform.
var ErrNoTransform = errors.New("script does not define a transform function")

// Script is a Lua program that rewrites steps one at a time.
//
// The script defines transform(step), where step is a table with the
// fields seq, kind, description, comment, min, max, random, key, button,
// x, y, line, tag and details. Returning nil or false drops the step and
// returning true keeps it. A returned table replaces the step; unless it is
// unchanged it is validated and re-encoded, so edits to the structured
// fields show up in the description.
//
// Only the base, table, string and math libraries are available, plus a
// macro module with key_name(code) and key_code(name).
//
// A Script is not safe for concurrent use.
type Script struct {
	L      *lua.LState
	logger *logging.Logger
}

// LoadScript compiles and runs src, which must define transform.
func LoadScript(src string, logger *logging.Logger) (*Script, error) {
	s := newScript(logger)
	if err := s.L.DoString(src); err != nil {
		s.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	if err := s.check(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// LoadScriptFile reads and loads the script at path.
func LoadScriptFile(path string, logger *logging.Logger) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return LoadScript(string(src), logger)
}

func newScript(logger *logging.Logger) *Script {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	s := &Script{L: L, logger: logging.OrNull(logger).WithComponent("script")}
	L.SetGlobal("macro", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"key_name": s.luaKeyName,
		"key_code": s.luaKeyCode,
		"log":      s.luaLog,
	}))
	return s
}

func (s *Script) check() error {
	if fn := s.L.GetGlobal(ScriptFunc); fn.Type() != lua.LTFunction {
		return ErrNoTransform
	}
	return nil
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.L.Close()
}

// Apply runs transform over steps and returns the resulting timeline,
// renumbered. ctx cancels a long-running script.
func (s *Script) Apply(ctx context.Context, steps []step.Step) ([]step.Step, error) {
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	fn := s.L.GetGlobal(ScriptFunc)
	out := make([]step.Step, 0, len(steps))
	for _, st := range steps {
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, s.toTable(st)); err != nil {
			return nil, fmt.Errorf("transform step %d: %w", st.Seq, err)
		}
		ret := s.L.Get(-1)
		s.L.Pop(1)

		switch v := ret.(type) {
		case *lua.LNilType:
			s.logger.Debug("dropped step %d (%s)", st.Seq, st.Description)
		case lua.LBool:
			if bool(v) {
				out = append(out, st)
			} else {
				s.logger.Debug("dropped step %d (%s)", st.Seq, st.Description)
			}
		case *lua.LTable:
			if sameFields(v, s.toTable(st)) {
				out = append(out, st)
				continue
			}
			next, err := fromTable(v, st)
			if err != nil {
				return nil, fmt.Errorf("transform step %d: %w", st.Seq, err)
			}
			out = append(out, next)
		default:
			return nil, fmt.Errorf("transform step %d: returned %s, want table or nil", st.Seq, ret.Type())
		}
	}

	step.Renumber(out)
	return out, nil
}

func (s *Script) toTable(st step.Step) *lua.LTable {
	t := s.L.NewTable()
	t.RawSetString("seq", lua.LNumber(st.Seq))
	t.RawSetString("kind", lua.LString(st.Kind.String()))
	t.RawSetString("description", lua.LString(st.Description))
	t.RawSetString("comment", lua.LString(st.Comment))

	switch {
	case st.Kind == step.KindDelay:
		t.RawSetString("min", lua.LNumber(st.Delay.Min))
		t.RawSetString("random", lua.LBool(st.Delay.Random))
		if st.Delay.Random {
			t.RawSetString("max", lua.LNumber(st.Delay.Max))
		}
	case st.Kind.IsKey():
		t.RawSetString("key", lua.LString(st.Key))
	case st.Kind.IsButton():
		t.RawSetString("button", lua.LString(st.Button.Name))
		if st.Button.HasAt {
			t.RawSetString("x", lua.LNumber(st.Button.At.X))
			t.RawSetString("y", lua.LNumber(st.Button.At.Y))
		}
	case st.Kind == step.KindMouseMove:
		t.RawSetString("x", lua.LNumber(st.Point.X))
		t.RawSetString("y", lua.LNumber(st.Point.Y))
	case st.Kind == step.KindGoto:
		t.RawSetString("line", lua.LNumber(st.Line))
	default:
		t.RawSetString("tag", lua.LString(st.Other.Tag))
		t.RawSetString("details", lua.LString(st.Other.Details))
	}
	return t
}

// fromTable rebuilds a step from a table returned by the script. Fields
// the table leaves out keep their values from orig.
func fromTable(t *lua.LTable, orig step.Step) (step.Step, error) {
	kind := orig.Kind
	if v := t.RawGetString("kind"); v != lua.LNil {
		k, err := step.ParseKind(lua.LVAsString(v))
		if err != nil {
			return step.Step{}, err
		}
		kind = k
	}

	comment := orig.Comment
	if v := t.RawGetString("comment"); v != lua.LNil {
		comment = lua.LVAsString(v)
	}

	if kind == step.KindOther {
		tag, details := orig.Other.Tag, orig.Other.Details
		if v := t.RawGetString("tag"); v != lua.LNil {
			tag = lua.LVAsString(v)
		}
		if v := t.RawGetString("details"); v != lua.LNil {
			details = lua.LVAsString(v)
		}
		out := codec.NewOther(tag, details)
		out.Comment = comment
		return out, nil
	}

	f, _ := codec.Decode(orig)
	f.Kind = kind
	f.Comment = comment
	setString(t, "min", &f.MinDelay)
	setString(t, "max", &f.MaxDelay)
	setString(t, "key", &f.KeyName)
	setString(t, "button", &f.Button)
	setString(t, "x", &f.X)
	setString(t, "y", &f.Y)
	setString(t, "line", &f.Line)
	if v := t.RawGetString("random"); v != lua.LNil {
		f.Random = lua.LVAsBool(v)
	}

	return codec.Build(f)
}

// sameFields reports whether a and b hold equal values under the same keys.
func sameFields(a, b *lua.LTable) bool {
	same := true
	a.ForEach(func(k, v lua.LValue) {
		if b.RawGet(k) != v {
			same = false
		}
	})
	b.ForEach(func(k, v lua.LValue) {
		if a.RawGet(k) != v {
			same = false
		}
	})
	return same
}

func setString(t *lua.LTable, field string, dst *string) {
	switch v := t.RawGetString(field).(type) {
	case *lua.LNilType:
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			*dst = strconv.FormatInt(int64(f), 10)
		} else {
			*dst = strconv.FormatFloat(f, 'f', -1, 64)
		}
	default:
		*dst = lua.LVAsString(v)
	}
}

func (s *Script) luaKeyName(L *lua.LState) int {
	L.Push(lua.LString(keys.Name(keys.Code(L.CheckInt(1)))))
	return 1
}

func (s *Script) luaKeyCode(L *lua.LState) int {
	code, ok := keys.Lookup(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(code))
	return 1
}

func (s *Script) luaLog(L *lua.LState) int {
	s.logger.Info("%s", L.CheckString(1))
	return 0
}
