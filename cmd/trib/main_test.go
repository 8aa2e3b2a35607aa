package main

import (
	"fmt"
	"testing"

	gg "github.com/alex-ozdemir/gg"
	"github.com/stretchr/testify/require"
)

// evalThunk reduces t to its concrete Value by resolving every Thunk/
// ThunkOutput argument (recursively evaluating the thunk it references)
// before running the body, mirroring one-re-entry-at-a-time worker
// evaluation well enough to check the end-to-end scenarios in spec.md §8.
func evalThunk(rt *gg.Runtime, t *gg.Thunk) (*gg.Value, error) {
	if !t.Executable {
		resolved := make([]any, len(t.Args))
		for i, a := range t.Args {
			switch v := a.(type) {
			case *gg.Thunk:
				val, err := evalThunk(rt, v)
				if err != nil {
					return nil, err
				}
				resolved[i] = val
			case *gg.ThunkOutput:
				val, err := evalThunk(rt, v.Thunk)
				if err != nil {
					return nil, err
				}
				resolved[i] = val
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
	case *gg.Value:
		return r, nil
	case *gg.Thunk:
		return evalThunk(rt, r)
	default:
		return nil, fmt.Errorf("trib: unexpected thunk result type %T", result)
	}
}

func evalTrib(t *testing.T, n int64) string {
	t.Helper()
	registry, err := newRegistry()
	require.NoError(t, err)
	rt := &gg.Runtime{Registry: registry}

	fn, ok := registry.Lookup("trib")
	require.True(t, ok)
	th, err := gg.NewThunk(fn, n)
	require.NoError(t, err)

	v, err := evalThunk(rt, th)
	require.NoError(t, err)
	s, err := v.AsString()
	require.NoError(t, err)
	return s
}

func TestTribBaseCases(t *testing.T) {
	require.Equal(t, "0", evalTrib(t, 0))
	require.Equal(t, "1", evalTrib(t, 1))
	require.Equal(t, "2", evalTrib(t, 2))
}

// spec.md §8 scenario 3: "trib.py init trib 5" -> after gg-force out, out
// contains "11".
func TestTribRecurrence(t *testing.T) {
	require.Equal(t, "11", evalTrib(t, 5))
}
