package gg

import "log/slog"

// Role is the back-end-facing half of a running gg program: whichever of
// Coordinator or Worker the process re-entered as. Value and Thunk call back
// into it to persist content and to resolve already-installed binaries,
// without needing to know which role is actually driving the process.
type Role interface {
	Hasher

	// SaveBytes persists data to the back-end store, at destPath if destPath
	// is non-empty, and returns its content hash.
	SaveBytes(data []byte, destPath string) (Hash, error)

	// SavePath persists the file already on disk at path to the back-end
	// store, at destPath if destPath is non-empty, and returns its content
	// hash.
	SavePath(path string, destPath string) (Hash, error)

	// ThunkLocationArgs renders the gg-create-thunk-static flags that pin the
	// thunk's root output to destPath (spec.md §4.5: "--placeholder" for the
	// coordinator, "--output-path" always for the worker). When destPath is
	// empty the coordinator emits no flags, while the worker reserves the next
	// numbered output slot and pins to that. It errors if pinning requires
	// reserving a new output slot and none remain (spec.md §7: a filesystem/back-end-store
	// violation here is fatal, not something to paper over).
	ThunkLocationArgs(destPath string) ([]string, error)

	// ScriptHash is the hash of the running program's own executable, listed
	// as a --executable dependency of every thunk it serializes. Go compiles
	// script and library into a single static binary, so ScriptHash and
	// LibHash always agree — see LibHash.
	ScriptHash() (Hash, error)

	// LibHash is the hash of the "library" dependency spec.md §4.4/§8
	// requires every serialized thunk to list as an extra --value (the
	// "M+1 ... including the library" structural law). Python's pygg needed
	// a real second file here (the importable module, as opposed to the
	// invoked script); Go has no such split, so LibHash always returns the
	// same hash as ScriptHash — the compiled binary plays both roles.
	LibHash() (Hash, error)

	// BinHash is the content hash of a back-end binary previously declared
	// via WithRequiredBinaries or one of RequiredCoreBinaries.
	BinHash(name string) (Hash, error)

	// BinPath returns the resolved, locally-usable path for a back-end
	// binary previously declared via WithRequiredBinaries (or one of
	// RequiredCoreBinaries). It panics if name was never installed, since
	// that can only be a registration bug, not bad input.
	BinPath(name string) string
}

// Runtime is passed to every running ThunkBody. It bundles the process's
// Registry (so a body can look up other registered functions to build child
// thunks) with its Role (so a body can save values and resolve binaries),
// plus the ambient logger and metrics recorder Run wired up.
type Runtime struct {
	Registry *Registry
	Role     Role
	Logger   *slog.Logger
	Metrics  MetricsRecorder
}

// Lookup resolves a registered function by name, for building a child thunk
// from within a running thunk body.
func (rt *Runtime) Lookup(name string) (*ThunkFunc, bool) {
	return rt.Registry.Lookup(name)
}

// Thunk binds args against the named registered function and returns the
// resulting Thunk, for a body that wants to produce a deferred computation
// rather than a concrete Value.
func (rt *Runtime) Thunk(name string, args ...any) (*Thunk, error) {
	fn, ok := rt.Registry.Lookup(name)
	if !ok {
		return nil, &unknownFunctionError{name: name}
	}
	return NewThunk(fn, args...)
}

// Bin returns the resolved local path of a declared back-end binary.
func (rt *Runtime) Bin(name string) string {
	return rt.Role.BinPath(name)
}

// Save persists v through this runtime's role.
func (rt *Runtime) Save(v *Value, destPath string) (Hash, error) {
	return Save(v, rt.Role, destPath)
}

// metrics returns rt.Metrics, or a no-op recorder if the Runtime was built
// without one (e.g. directly in a test, rather than via Run).
func (rt *Runtime) metrics() MetricsRecorder {
	if rt.Metrics == nil {
		return noopMetrics{}
	}
	return rt.Metrics
}

// logger returns rt.Logger, or slog.Default if the Runtime was built without
// one.
func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.Default()
	}
	return rt.Logger
}

type unknownFunctionError struct{ name string }

func (e *unknownFunctionError) Error() string {
	return "gg: no registered function named " + e.name
}
