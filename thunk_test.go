package gg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeFn(name string, params []Param) *ThunkFunc {
	return &ThunkFunc{Name: name, Params: params, Return: ReturnValue, Body: noopBody}
}

func TestNewThunkBindsTypedArgs(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "n", Kind: KindInt}, {Name: "s", Kind: KindString}})
	th, err := NewThunk(fn, int64(3), "hi")
	require.NoError(t, err)
	require.True(t, th.Executable)
	require.Equal(t, int64(3), th.Args[0])
	require.Equal(t, "hi", th.Args[1])
}

func TestNewThunkRejectsWrongArity(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "n", Kind: KindInt}})
	_, err := NewThunk(fn)
	require.Error(t, err)
}

func TestNewThunkRejectsWrongType(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "n", Kind: KindInt}})
	_, err := NewThunk(fn, "not an int")
	require.Error(t, err)
}

func TestNewThunkValueArgWithConcreteValue(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "v", Kind: KindValue}})
	v := BytesValue([]byte("x"))
	th, err := NewThunk(fn, v)
	require.NoError(t, err)
	require.True(t, th.Executable)
}

func TestNewThunkValueArgWithNestedThunkIsNonExecutable(t *testing.T) {
	inner := makeFn("inner", nil)
	innerThunk, err := NewThunk(inner)
	require.NoError(t, err)

	fn := makeFn("f", []Param{{Name: "v", Kind: KindValue}})
	th, err := NewThunk(fn, innerThunk)
	require.NoError(t, err)
	require.False(t, th.Executable)
}

func TestNewThunkFromStringsDecodesPrimitives(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "n", Kind: KindInt}, {Name: "x", Kind: KindFloat}, {Name: "s", Kind: KindString}})
	th, err := NewThunkFromStrings(fn, "42", "3.5", "hello")
	require.NoError(t, err)
	require.Equal(t, int64(42), th.Args[0])
	require.Equal(t, 3.5, th.Args[1])
	require.Equal(t, "hello", th.Args[2])
}

func TestNewThunkFromStringsRejectsBadInt(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "n", Kind: KindInt}})
	_, err := NewThunkFromStrings(fn, "not-a-number")
	require.Error(t, err)
}

func TestNewThunkFromStringsValueArgBecomesFileValue(t *testing.T) {
	fn := makeFn("f", []Param{{Name: "v", Kind: KindValue}})
	th, err := NewThunkFromStrings(fn, "/resolved/path")
	require.NoError(t, err)
	v, ok := th.Args[0].(*Value)
	require.True(t, ok)
	require.Equal(t, "/resolved/path", v.Path())
	require.True(t, v.Saved)
}

func TestThunkExecRejectsNonExecutable(t *testing.T) {
	inner := makeFn("inner", nil)
	innerThunk, err := NewThunk(inner)
	require.NoError(t, err)

	fn := makeFn("f", []Param{{Name: "v", Kind: KindValue}})
	th, err := NewThunk(fn, innerThunk)
	require.NoError(t, err)

	_, err = th.Exec(&Runtime{})
	require.Error(t, err)
}

func TestThunkExecRunsBody(t *testing.T) {
	called := false
	fn := &ThunkFunc{
		Name: "f",
		Body: func(rt *Runtime, args []any) (any, error) {
			called = true
			return BytesValue([]byte("result")), nil
		},
		Return: ReturnValue,
	}
	th, err := NewThunk(fn)
	require.NoError(t, err)

	out, err := th.Exec(&Runtime{})
	require.NoError(t, err)
	require.True(t, called)
	v, ok := out.(*Value)
	require.True(t, ok)
	data, _ := v.AsBytes()
	require.Equal(t, "result", string(data))
}

func TestThunkOutputDegradesToDefault(t *testing.T) {
	params := []Param{{Name: "n", Kind: KindInt}}
	profile := func(args []any) ([]string, error) { return []string{"out", "aux"}, nil }
	fn := &ThunkFunc{
		Name: "f", Params: params, Return: ReturnMultiOutput, Body: noopBody,
		Outputs: profile, OutputsParams: params,
	}
	th, err := NewThunk(fn, int64(1))
	require.NoError(t, err)

	out := th.Output("out")
	require.Equal(t, "", out.Name, "output matching the default name should degrade to empty")

	aux := th.Output("aux")
	require.Equal(t, "aux", aux.Name)
}
