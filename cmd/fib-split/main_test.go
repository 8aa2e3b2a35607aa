package main

import (
	"fmt"
	"testing"

	gg "github.com/alex-ozdemir/gg"
	"github.com/stretchr/testify/require"
)

// evalMultiThunk reduces t to its map of named outputs, resolving every
// Thunk/ThunkOutput argument by recursively evaluating the thunk it
// references and selecting the requested output member. This mirrors
// one-re-entry-at-a-time worker evaluation well enough to check the
// end-to-end scenario in spec.md §8.
func evalMultiThunk(rt *gg.Runtime, t *gg.Thunk) (map[string]any, error) {
	if !t.Executable {
		resolved := make([]any, len(t.Args))
		for i, a := range t.Args {
			switch v := a.(type) {
			case *gg.Thunk:
				m, err := evalMultiThunk(rt, v)
				if err != nil {
					return nil, err
				}
				resolved[i] = m[defaultOutputName(v)]
			case *gg.ThunkOutput:
				m, err := evalMultiThunk(rt, v.Thunk)
				if err != nil {
					return nil, err
				}
				name := v.Name
				if name == "" {
					name = defaultOutputName(v.Thunk)
				}
				member, ok := m[name]
				if !ok {
					return nil, fmt.Errorf("fib-split: no output named %q", name)
				}
				resolved[i] = member
			default:
				resolved[i] = a
			}
		}
		t = &gg.Thunk{Fn: t.Fn, Args: resolved, Executable: true}
	}
	result, err := t.Exec(rt)
	if err != nil {
		return nil, err
	}
	switch r := result.(type) {
	case map[string]any:
		return r, nil
	case *gg.Thunk:
		return evalMultiThunk(rt, r)
	default:
		return nil, fmt.Errorf("fib-split: unexpected thunk result type %T", result)
	}
}

func defaultOutputName(t *gg.Thunk) string {
	profile, err := t.Fn.Outputs(t.Args)
	if err != nil || len(profile) == 0 {
		return "out"
	}
	return profile[0]
}

// spec.md §8 scenario 4: "fib_split.py init fib 5" -> final out contains "5".
func TestFibSplitProducesValueAndTrace(t *testing.T) {
	registry, err := newRegistry()
	require.NoError(t, err)
	rt := &gg.Runtime{Registry: registry}

	fn, ok := registry.Lookup("fib")
	require.True(t, ok)
	th, err := gg.NewThunk(fn, int64(5))
	require.NoError(t, err)

	outputs, err := evalMultiThunk(rt, th)
	require.NoError(t, err)

	value, ok := outputs["value"].(*gg.Value)
	require.True(t, ok)
	s, err := value.AsString()
	require.NoError(t, err)
	require.Equal(t, "5", s)

	trace, ok := outputs["trace"].(*gg.Value)
	require.True(t, ok)
	traceStr, err := trace.AsString()
	require.NoError(t, err)
	require.NotEmpty(t, traceStr)
}
