package gg

import (
	"fmt"
	"strconv"
)

// Thunk is a bound invocation of a registered function: a function
// reference plus an ordered, validated argument vector. Executable is true
// iff every argument that demands a concrete Value is already a Value —
// false if any was substituted with a Thunk or ThunkOutput.
type Thunk struct {
	Fn         *ThunkFunc
	Args       []any
	Executable bool
}

// ThunkOutput references either the default output of a Thunk (Name == "")
// or one of its named outputs. It degrades to the default output when Name
// matches the first entry of the thunk's output profile.
type ThunkOutput struct {
	Thunk *Thunk
	Name  string
}

// NewThunk binds args against fn's formal parameters, validating arity and
// per-argument kind. A *Thunk or *ThunkOutput may stand in for any formal
// Value parameter; doing so marks the result non-executable.
func NewThunk(fn *ThunkFunc, args ...any) (*Thunk, error) {
	return bindThunk(fn, args, false)
}

// NewThunkFromStrings binds raw CLI argument tokens against fn's formal
// parameters, decoding each one according to its declared Kind (string
// passthrough, int/float parse, or a resolved-path *Value for Kind Value).
// This is how both the coordinator (decoding the program's own argv) and a
// worker (decoding an already-resolved re-entry command) construct the Thunk
// they are about to serialize or execute.
func NewThunkFromStrings(fn *ThunkFunc, args ...string) (*Thunk, error) {
	actuals := make([]any, len(args))
	for i, a := range args {
		actuals[i] = a
	}
	return bindThunk(fn, actuals, true)
}

// bindThunk is the shared implementation behind NewThunk (already-typed
// actuals, used by user code inside a running thunk body) and the
// CLI-decoding path (raw strings, used by the entry dispatcher), selected by
// decodeFromString.
func bindThunk(fn *ThunkFunc, args []any, decodeFromString bool) (*Thunk, error) {
	if fn == nil {
		return nil, fmt.Errorf("gg: thunk: nil function reference")
	}
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("gg: thunk %q: expected %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}

	t := &Thunk{Fn: fn, Args: make([]any, len(args)), Executable: true}
	for i, p := range fn.Params {
		actual := args[i]

		if decodeFromString {
			raw, ok := actual.(string)
			if ok {
				decoded, err := decodePrimitive(raw, p.Kind)
				if err != nil {
					return nil, fmt.Errorf("gg: thunk %q: argument %q: %w", fn.Name, p.Name, err)
				}
				actual = decoded
			}
		}

		switch p.Kind {
		case KindString:
			if _, ok := actual.(string); !ok {
				return nil, fmt.Errorf("gg: thunk %q: argument %q should have kind string, got %T", fn.Name, p.Name, actual)
			}
		case KindInt:
			if _, ok := actual.(int64); !ok {
				return nil, fmt.Errorf("gg: thunk %q: argument %q should have kind int, got %T", fn.Name, p.Name, actual)
			}
		case KindFloat:
			if _, ok := actual.(float64); !ok {
				return nil, fmt.Errorf("gg: thunk %q: argument %q should have kind float, got %T", fn.Name, p.Name, actual)
			}
		case KindValue:
			switch actual.(type) {
			case *Value:
				// concrete, stays executable
			case *Thunk, *ThunkOutput:
				t.Executable = false
			default:
				return nil, fmt.Errorf("gg: thunk %q: argument %q should have kind Value (or a Thunk/ThunkOutput substitute), got %T", fn.Name, p.Name, actual)
			}
		default:
			return nil, fmt.Errorf("gg: thunk %q: argument %q has unknown formal kind %v", fn.Name, p.Name, p.Kind)
		}
		t.Args[i] = actual
	}
	return t, nil
}

func decodePrimitive(raw string, kind Kind) (any, error) {
	switch kind {
	case KindString:
		return raw, nil
	case KindInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid integer: %q", raw)
		}
		return v, nil
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid float: %q", raw)
		}
		return v, nil
	case KindValue:
		// A raw CLI token destined for a Value parameter is a resolved file
		// path, already owned by the back-end store (spec.md §4.6 "exec").
		return FileValue(raw, true), nil
	default:
		return nil, fmt.Errorf("unknown formal kind %v", kind)
	}
}

// Exec runs fn's body with the bound arguments, returning the output tree.
// Precondition: t.Executable. Exec never recurses into nested thunks; the
// back-end reduces those independently via their own worker re-entries.
func (t *Thunk) Exec(rt *Runtime) (any, error) {
	if !t.Executable {
		return nil, fmt.Errorf("gg: thunk %q: exec called on a non-executable thunk", t.Fn.Name)
	}
	return t.Fn.Body(rt, t.Args)
}

// Output builds a reference to one of t's named outputs. An empty name, or a
// name matching the first entry of t's output profile, refers to the
// default output and Output returns a ThunkOutput with Name == "" in that
// case so downstream hashing degrades correctly (spec.md §3).
func (t *Thunk) Output(name string) *ThunkOutput {
	if name != "" && t.Fn.Outputs != nil {
		if profile, err := t.Fn.Outputs(t.Args); err == nil && len(profile) > 0 && profile[0] == name {
			name = ""
		}
	}
	return &ThunkOutput{Thunk: t, Name: name}
}
