// Command fib demonstrates the simplest gg thunk graph: a recursive
// Fibonacci computation where each call either returns a concrete Value or
// defers to two child thunks, letting the back-end schedule and cache the
// resulting DAG.
package main

import (
	"fmt"
	"os"
	"strconv"

	gg "github.com/alex-ozdemir/gg"
)

func fib(rt *gg.Runtime, args []any) (any, error) {
	n := args[0].(int64)
	if n < 2 {
		return gg.StringValue(strconv.FormatInt(n, 10)), nil
	}
	a, err := rt.Thunk("fib", n-1)
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build fib(%d): %w", n, n-1, err)
	}
	b, err := rt.Thunk("fib", n-2)
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build fib(%d): %w", n, n-2, err)
	}
	sum, err := rt.Thunk("sum", a.Output(""), b.Output(""))
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build sum: %w", n, err)
	}
	return sum, nil
}

func sum(rt *gg.Runtime, args []any) (any, error) {
	a, err := args[0].(*gg.Value).AsString()
	if err != nil {
		return nil, err
	}
	b, err := args[1].(*gg.Value).AsString()
	if err != nil {
		return nil, err
	}
	av, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("sum: not an integer: %q", a)
	}
	bv, err := strconv.ParseInt(b, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("sum: not an integer: %q", b)
	}
	return gg.StringValue(strconv.FormatInt(av+bv, 10)), nil
}

// newRegistry builds the registry shared by main and the package's tests.
func newRegistry() (*gg.Registry, error) {
	registry := gg.NewRegistry()
	if err := registry.Register("fib", []gg.Param{{Name: "n", Kind: gg.KindInt}}, gg.ReturnOutput, fib); err != nil {
		return nil, err
	}
	if err := registry.Register("sum", []gg.Param{{Name: "a", Kind: gg.KindValue}, {Name: "b", Kind: gg.KindValue}}, gg.ReturnValue, sum); err != nil {
		return nil, err
	}
	return registry, nil
}

func main() {
	registry, err := newRegistry()
	if err != nil {
		panic(err)
	}
	os.Exit(gg.Run(registry))
}
