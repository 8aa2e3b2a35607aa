package main

import (
	"fmt"
	"testing"

	gg "github.com/alex-ozdemir/gg"
	"github.com/stretchr/testify/require"
)

// evalThunk reduces t to its concrete Value by resolving every Thunk/
// ThunkOutput argument (recursively evaluating the thunk it references)
// before running the body. This mirrors, within a single process, what a
// real worker fleet does one re-entry at a time — it is how these tests
// check the end-to-end scenarios in spec.md §8 without a gg-* back end.
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
		return nil, fmt.Errorf("fib: unexpected thunk result type %T", result)
	}
}

func evalFib(t *testing.T, n int64) string {
	t.Helper()
	registry, err := newRegistry()
	require.NoError(t, err)
	rt := &gg.Runtime{Registry: registry}

	fn, ok := registry.Lookup("fib")
	require.True(t, ok)
	th, err := gg.NewThunk(fn, n)
	require.NoError(t, err)

	v, err := evalThunk(rt, th)
	require.NoError(t, err)
	s, err := v.AsString()
	require.NoError(t, err)
	return s
}

// spec.md §8 scenario 1: "fib.py init fib 1" -> out contains "1".
func TestFibBaseCase(t *testing.T) {
	require.Equal(t, "1", evalFib(t, 1))
	require.Equal(t, "0", evalFib(t, 0))
}

// spec.md §8 scenario 2: "fib.py init fib 5" -> after gg-force out, out
// contains "5".
func TestFibRecursive(t *testing.T) {
	require.Equal(t, "5", evalFib(t, 5))
}
