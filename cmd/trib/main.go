// Command trib extends the fib example to a three-term (tribonacci)
// recurrence, showing a thunk body that fans out to three child thunks
// before combining their outputs.
package main

import (
	"fmt"
	"os"
	"strconv"

	gg "github.com/alex-ozdemir/gg"
)

func trib(rt *gg.Runtime, args []any) (any, error) {
	n := args[0].(int64)
	if n < 3 {
		return gg.StringValue(strconv.FormatInt(n, 10)), nil
	}
	a, err := rt.Thunk("trib", n-1)
	if err != nil {
		return nil, fmt.Errorf("trib(%d): build trib(%d): %w", n, n-1, err)
	}
	b, err := rt.Thunk("trib", n-2)
	if err != nil {
		return nil, fmt.Errorf("trib(%d): build trib(%d): %w", n, n-2, err)
	}
	c, err := rt.Thunk("trib", n-3)
	if err != nil {
		return nil, fmt.Errorf("trib(%d): build trib(%d): %w", n, n-3, err)
	}
	total, err := rt.Thunk("sum3", a.Output(""), b.Output(""), c.Output(""))
	if err != nil {
		return nil, fmt.Errorf("trib(%d): build sum3: %w", n, err)
	}
	return total, nil
}

func sum3(rt *gg.Runtime, args []any) (any, error) {
	vals := make([]int64, 3)
	for i, a := range args {
		s, err := a.(*gg.Value).AsString()
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sum3: not an integer: %q", s)
		}
		vals[i] = v
	}
	return gg.StringValue(strconv.FormatInt(vals[0]+vals[1]+vals[2], 10)), nil
}

// newRegistry builds the registry shared by main and the package's tests.
func newRegistry() (*gg.Registry, error) {
	registry := gg.NewRegistry()
	if err := registry.Register("trib", []gg.Param{{Name: "n", Kind: gg.KindInt}}, gg.ReturnOutput, trib); err != nil {
		return nil, err
	}
	sum3Params := []gg.Param{
		{Name: "a", Kind: gg.KindValue},
		{Name: "b", Kind: gg.KindValue},
		{Name: "c", Kind: gg.KindValue},
	}
	if err := registry.Register("sum3", sum3Params, gg.ReturnValue, sum3); err != nil {
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
