package gg

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// MaxFanout is the fixed upper bound on output slots declared per thunk.
// Every serialized thunk declares this many numeric output slots regardless
// of its own output profile, so workers may always materialize up to that
// many auxiliary outputs.
const MaxFanout = 10

var scriptPath = func() string {
	if p, err := os.Executable(); err == nil {
		return p
	}
	return os.Args[0]
}()

// Serialize translates t into a gg-create-thunk-static invocation, recursively
// saving every dependency first, and returns the resulting thunk's hash.
// destPath pins the root output location; pass "" for a thunk serialized
// only because something else depends on it.
func Serialize(rt *Runtime, t *Thunk, destPath string) (Hash, error) {
	role := rt.Role
	fn := t.Fn

	scriptHash, err := role.ScriptHash()
	if err != nil {
		return "", fmt.Errorf("gg: serialize %q: script hash: %w", fn.Name, err)
	}
	libHash, err := role.LibHash()
	if err != nil {
		return "", fmt.Errorf("gg: serialize %q: library hash: %w", fn.Name, err)
	}

	bins := rt.Registry.InstallOrder()
	binHashes := make([]Hash, len(bins))
	for i, b := range bins {
		h, err := role.BinHash(b)
		if err != nil {
			return "", fmt.Errorf("gg: serialize %q: binary %q hash: %w", fn.Name, b, err)
		}
		binHashes[i] = h
	}

	executables := append([]Hash{scriptHash}, binHashes...)
	values := []Hash{libHash}
	var thunks []Hash

	cmd := []string{filepath.Base(scriptPath), "exec"}
	for _, h := range binHashes {
		cmd = append(cmd, Placeholder(h))
	}
	cmd = append(cmd, fn.Name)

	for i, p := range fn.Params {
		actual := t.Args[i]
		switch p.Kind {
		case KindString:
			cmd = append(cmd, actual.(string))
			continue
		case KindInt:
			cmd = append(cmd, fmt.Sprintf("%d", actual.(int64)))
			continue
		case KindFloat:
			cmd = append(cmd, fmt.Sprintf("%g", actual.(float64)))
			continue
		}

		// KindValue: the actual is a *Value, *Thunk, or *ThunkOutput. Save it
		// (recursively serializing nested thunks) and emit a placeholder.
		h, outputName, err := saveArg(rt, actual)
		if err != nil {
			return "", fmt.Errorf("gg: serialize %q: argument %q: %w", fn.Name, p.Name, err)
		}
		cmd = append(cmd, Placeholder(h))
		switch actual.(type) {
		case *Value:
			values = append(values, h)
		case *Thunk, *ThunkOutput:
			thunks = append(thunks, Hash(TaggedOutput(h, outputName)))
		}
	}

	outputs := outputNames(fn, t.Args)

	args := []string{role.BinPath("gg-create-thunk-static")}
	for _, v := range values {
		args = append(args, "--value", string(v))
	}
	for _, th := range thunks {
		args = append(args, "--thunk", string(th))
	}
	for _, o := range outputs {
		args = append(args, "--output", o)
	}
	for _, e := range executables {
		args = append(args, "--executable", string(e))
	}
	locationArgs, err := role.ThunkLocationArgs(destPath)
	if err != nil {
		return "", fmt.Errorf("gg: serialize %s: %w", fn.Name, err)
	}
	args = append(args, locationArgs...)
	args = append(args, "--envar", "GG_DONT_WRITE_CACHE=1")
	args = append(args, "--")
	args = append(args, string(scriptHash))
	args = append(args, cmd...)

	start := time.Now()
	h, err := runCreateThunk(fn.Name, args)
	rt.metrics().ObserveSubprocess(role.BinPath("gg-create-thunk-static"), time.Since(start), err)
	if err != nil {
		return "", err
	}
	rt.metrics().ObserveThunkSerialized()
	rt.logger().Debug("serialized thunk", slog.String("thunk", fn.Name), slog.String("hash", string(h)))
	return h, nil
}

// saveArg saves a KindValue actual argument (possibly a nested thunk,
// serialized recursively) and returns the hash to place in the re-entry
// command, along with the output name to tag onto a thunk dependency (empty
// for a plain Value or the default output of a Thunk/ThunkOutput).
func saveArg(rt *Runtime, actual any) (Hash, string, error) {
	switch a := actual.(type) {
	case *Value:
		h, err := rt.Save(a, "")
		return h, "", err
	case *Thunk:
		h, err := Serialize(rt, a, "")
		return h, "", err
	case *ThunkOutput:
		h, err := Serialize(rt, a.Thunk, "")
		return h, a.Name, err
	default:
		return "", "", fmt.Errorf("gg: unexpected Value-kind argument of type %T", actual)
	}
}

// outputNames computes the padded outputs list: the declared output profile
// (or ["out"] for a single-output function), followed by MAX_FANOUT
// zero-padded numeric slot names.
func outputNames(fn *ThunkFunc, args []any) []string {
	profile := []string{"out"}
	if fn.Outputs != nil {
		if p, err := fn.Outputs(args); err == nil && len(p) > 0 {
			profile = p
		}
	}
	out := make([]string, 0, len(profile)+MaxFanout)
	out = append(out, profile...)
	for i := 0; i < MaxFanout; i++ {
		out = append(out, fmt.Sprintf("%03d", i))
	}
	return out
}

// runCreateThunk invokes gg-create-thunk-static with the given argv,
// capturing its trimmed standard error as the resulting thunk hash. A
// non-zero exit surfaces both captured streams and is fatal (spec.md §4.4
// step 7, §7 "Subprocess failure").
func runCreateThunk(thunkName string, args []string) (Hash, error) {
	cmd := exec.Command(args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf(
			"gg: gg-create-thunk-static failed for thunk %q: %w\nstdout:\n%s\nstderr:\n%s",
			thunkName, err, stdout.String(), stderr.String(),
		)
	}
	return Hash(trimTrailingNewline(stderr.String())), nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	for len(s) > 0 && (s[0] == '\n' || s[0] == '\r' || s[0] == ' ') {
		s = s[1:]
	}
	return s
}
