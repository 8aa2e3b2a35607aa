// Command fib-bin demonstrates WithRequiredBinaries: the addition step
// shells out to an external binary (add_str) resolved and installed by the
// Role runtime, rather than doing the arithmetic in Go.
package main

import (
	"fmt"
	"os"
	"os/exec"
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
	sum, err := rt.Thunk("add-str", a.Output(""), b.Output(""))
	if err != nil {
		return nil, fmt.Errorf("fib(%d): build add-str: %w", n, err)
	}
	return sum, nil
}

// addStr shells out to the external add_str binary, which reads the two
// integers backing a and b by path and writes their sum to "out".
func addStr(rt *gg.Runtime, args []any) (any, error) {
	a := args[0].(*gg.Value)
	b := args[1].(*gg.Value)

	aPath := a.Path()
	if aPath == "" {
		return nil, fmt.Errorf("add-str: argument a has no backing path")
	}
	bPath := b.Path()
	if bPath == "" {
		return nil, fmt.Errorf("add-str: argument b has no backing path")
	}

	cmd := exec.Command(rt.Bin("add_str"), aPath, bPath)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("add-str: run add_str: %w", err)
	}
	return gg.FileValue("out", false), nil
}

// newRegistry builds the registry shared by main and the package's tests.
func newRegistry() (*gg.Registry, error) {
	registry := gg.NewRegistry()
	if err := registry.Register("fib", []gg.Param{{Name: "n", Kind: gg.KindInt}}, gg.ReturnOutput, fib); err != nil {
		return nil, err
	}
	addParams := []gg.Param{{Name: "a", Kind: gg.KindValue}, {Name: "b", Kind: gg.KindValue}}
	if err := registry.Register("add-str", addParams, gg.ReturnValue, addStr, gg.WithRequiredBinaries("add_str")); err != nil {
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
