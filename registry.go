package gg

import "fmt"

// Kind is a formal argument kind: exactly one of {string, integer, float,
// Value}. No defaults, no varargs, no keyword arguments.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindValue:
		return "Value"
	default:
		return "unknown"
	}
}

// Param is one formal parameter of a registered thunk function.
//
// Variadic and HasDefault exist only so that a Param built programmatically
// (e.g. by a code generator) can express the violations spec.md §4.3 names;
// idiomatic hand-written registrations never set them, since Go itself has
// no varargs/defaults in this calling convention.
type Param struct {
	Name       string
	Kind       Kind
	Variadic   bool
	HasDefault bool
}

// ReturnKind is the declared shape of a thunk function's output tree.
type ReturnKind int

const (
	// ReturnUnset marks a registration with no return annotation; always rejected.
	ReturnUnset ReturnKind = iota
	ReturnValue
	ReturnThunk
	// ReturnOutput covers "either a Value or a Thunk" (spec.md's `Output`).
	ReturnOutput
	ReturnMultiOutput
)

// ThunkBody is a registered function's implementation: given a Runtime and
// the bound, decoded arguments (in Param order), it returns an output tree
// (*Value, *Thunk, *ThunkOutput, or map[string]any for ReturnMultiOutput).
type ThunkBody func(rt *Runtime, args []any) (any, error)

// OutputProfileFunc computes the ordered list of output names a
// ReturnMultiOutput thunk will produce, given the same bound arguments the
// body would receive. The first name is the default output.
type OutputProfileFunc func(args []any) ([]string, error)

// ThunkFunc is a registered function: its name, its validated signature, its
// implementation, and the back-end binaries it requires.
type ThunkFunc struct {
	Name          string
	Params        []Param
	Return        ReturnKind
	Body          ThunkBody
	Outputs       OutputProfileFunc
	OutputsParams []Param
	RequiredBins  []string
}

// RegisterOption configures an optional facet of a registration.
type RegisterOption func(*ThunkFunc)

// WithOutputs declares the output-profile function for a ReturnMultiOutput
// thunk, along with the profile function's OWN formal parameter list. Register
// rejects the registration unless params is identical, kind-for-kind and in
// order, to the thunk's own parameters (spec.md §9: no runtime-handle
// parameter on either side).
func WithOutputs(params []Param, profile OutputProfileFunc) RegisterOption {
	return func(tf *ThunkFunc) {
		tf.Outputs = profile
		tf.OutputsParams = append([]Param(nil), params...)
	}
}

// WithRequiredBinaries declares external binaries this thunk function needs
// installed (in addition to the always-required gg-create-thunk-static and
// gg-hash-static). Calls establish the canonical binary order: see
// Registry.InstallOrder.
func WithRequiredBinaries(names ...string) RegisterOption {
	return func(tf *ThunkFunc) { tf.RequiredBins = append(tf.RequiredBins, names...) }
}

// Registry is a process-wide, immutable-after-construction mapping from
// function name to ThunkFunc. Required-bins always starts with
// gg-create-thunk-static and gg-hash-static; user functions extend it in
// registration order. Worker re-entry must rebuild an identical registry,
// which falls out of re-running the same program's init-time registrations.
type Registry struct {
	functions map[string]*ThunkFunc
	order     []string
	bins      []string
	binSet    map[string]bool
}

// RequiredCoreBinaries are the back-end binaries every thunk depends on,
// regardless of what any individual thunk function declares.
var RequiredCoreBinaries = []string{"gg-create-thunk-static", "gg-hash-static"}

// NewRegistry constructs an empty registry seeded with the core binaries.
func NewRegistry() *Registry {
	r := &Registry{
		functions: make(map[string]*ThunkFunc),
		binSet:    make(map[string]bool),
	}
	for _, b := range RequiredCoreBinaries {
		r.addBin(b)
	}
	return r
}

func (r *Registry) addBin(name string) {
	if r.binSet[name] {
		return
	}
	r.binSet[name] = true
	r.bins = append(r.bins, name)
}

// InstallOrder returns the canonical binary installation order established
// by registration order: RequiredCoreBinaries first, then each
// WithRequiredBinaries name the first time it's declared. Coordinator emits
// binary hashes in this order; Worker consumes argv binary paths in the same
// order. Deviation breaks worker re-entry (spec.md §4.5).
func (r *Registry) InstallOrder() []string {
	out := make([]string, len(r.bins))
	copy(out, r.bins)
	return out
}

// Register validates and adds a thunk function to the registry. It rejects,
// naming the offending function, exactly the conditions spec.md §4.3
// enumerates: an unset/invalid return kind, a MultiOutput return with no
// declared output profile, a mismatched output-profile signature, any
// variadic/default/unannotated-equivalent parameter, an unacceptable
// parameter kind, or a duplicate name.
func (r *Registry) Register(name string, params []Param, ret ReturnKind, body ThunkBody, opts ...RegisterOption) error {
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("gg: register %q: a thunk function with this name is already registered", name)
	}
	if body == nil {
		return fmt.Errorf("gg: register %q: nil body", name)
	}
	switch ret {
	case ReturnValue, ReturnThunk, ReturnOutput, ReturnMultiOutput:
	default:
		return fmt.Errorf("gg: register %q: no (or invalid) return annotation", name)
	}
	for _, p := range params {
		if p.Variadic {
			return fmt.Errorf("gg: register %q: parameter %q is variadic", name, p.Name)
		}
		if p.HasDefault {
			return fmt.Errorf("gg: register %q: parameter %q has a default value", name, p.Name)
		}
		switch p.Kind {
		case KindString, KindInt, KindFloat, KindValue:
		default:
			return fmt.Errorf("gg: register %q: parameter %q has unacceptable kind %v", name, p.Name, p.Kind)
		}
	}

	tf := &ThunkFunc{Name: name, Params: append([]Param(nil), params...), Return: ret, Body: body}
	for _, opt := range opts {
		opt(tf)
	}

	if ret == ReturnMultiOutput && tf.Outputs == nil {
		return fmt.Errorf("gg: register %q: MultiOutput return requires an output profile (WithOutputs)", name)
	}
	if tf.Outputs != nil {
		// The profile's own parameter list must match the thunk's formal
		// parameters exactly (spec.md §9's resolved ambiguity): same length,
		// same kinds, in order.
		if len(tf.OutputsParams) != len(params) {
			return fmt.Errorf("gg: register %q: output profile parameter count mismatch", name)
		}
		for i := range params {
			if params[i].Kind != tf.OutputsParams[i].Kind {
				return fmt.Errorf("gg: register %q: output profile parameter %d kind mismatch", name, i)
			}
		}
	}

	for _, b := range tf.RequiredBins {
		r.addBin(b)
	}

	r.functions[name] = tf
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the registered function by name.
func (r *Registry) Lookup(name string) (*ThunkFunc, bool) {
	tf, ok := r.functions[name]
	return tf, ok
}

// Names returns every registered function name, in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
