// Command fib-split demonstrates MultiOutput: a single thunk invocation that
// produces two named outputs, the Fibonacci value itself and a short trace
// describing how it was computed.
package main

import (
	"fmt"
	"os"
	"strconv"

	gg "github.com/alex-ozdemir/gg"
)

var fibParams = []gg.Param{{Name: "n", Kind: gg.KindInt}}

func fibOutputs(args []any) ([]string, error) {
	return []string{"value", "trace"}, nil
}

func fib(rt *gg.Runtime, args []any) (any, error) {
	n := args[0].(int64)
	if n < 2 {
		return map[string]any{
			"value": gg.StringValue(strconv.FormatInt(n, 10)),
			"trace": gg.StringValue(fmt.Sprintf("base case n=%d", n)),
		}, nil
	}

	a, err := rt.Thunk("fib", n-1)
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build fib(%d): %w", n, n-1, err)
	}
	b, err := rt.Thunk("fib", n-2)
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build fib(%d): %w", n, n-2, err)
	}

	total, err := rt.Thunk("combine", a.Output("value"), a.Output("trace"), b.Output("value"), b.Output("trace"))
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build combine: %w", n, err)
	}
	return total, nil
}

func combine(rt *gg.Runtime, args []any) (any, error) {
	aValue, err := args[0].(*gg.Value).AsString()
	if err != nil {
		return nil, err
	}
	aTrace, err := args[1].(*gg.Value).AsString()
	if err != nil {
		return nil, err
	}
	bValue, err := args[2].(*gg.Value).AsString()
	if err != nil {
		return nil, err
	}
	bTrace, err := args[3].(*gg.Value).AsString()
	if err != nil {
		return nil, err
	}

	av, err := strconv.ParseInt(aValue, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("combine: not an integer: %q", aValue)
	}
	bv, err := strconv.ParseInt(bValue, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("combine: not an integer: %q", bValue)
	}

	return map[string]any{
		"value": gg.StringValue(strconv.FormatInt(av+bv, 10)),
		"trace": gg.StringValue(fmt.Sprintf("combine(%s, %s)", aTrace, bTrace)),
	}, nil
}

// newRegistry builds the registry shared by main and the package's tests.
func newRegistry() (*gg.Registry, error) {
	registry := gg.NewRegistry()
	if err := registry.Register("fib", fibParams, gg.ReturnMultiOutput, fib, gg.WithOutputs(fibParams, fibOutputs)); err != nil {
		return nil, err
	}
	combineParams := []gg.Param{
		{Name: "aValue", Kind: gg.KindValue},
		{Name: "aTrace", Kind: gg.KindValue},
		{Name: "bValue", Kind: gg.KindValue},
		{Name: "bTrace", Kind: gg.KindValue},
	}
	if err := registry.Register("combine", combineParams, gg.ReturnMultiOutput, combine, gg.WithOutputs(combineParams, fibOutputs)); err != nil {
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
