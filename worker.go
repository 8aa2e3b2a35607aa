package gg

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Worker is the role that reduces one thunk to its output. Binary paths are
// drawn positionally from argv in the registry's canonical install order;
// any deviation from that order breaks re-entry (spec.md §4.5).
type Worker struct {
	registry *Registry
	cache    MemoCache
	logger   *slog.Logger
	metrics  MetricsRecorder

	binPaths map[string]string

	nextOutput int
	numOutputs int
}

// NewWorker consumes len(registry.InstallOrder()) leading elements of argv as
// binary paths (in registration order) and returns the constructed Worker
// plus the remaining argv (thunk name followed by resolved arguments). cache
// may be nil to disable hash memoization; logger/metrics may be nil, in
// which case Worker falls back to slog.Default and a no-op recorder.
func NewWorker(registry *Registry, argv []string, cache MemoCache, logger *slog.Logger, metrics MetricsRecorder) (*Worker, []string, error) {
	order := registry.InstallOrder()
	if len(argv) < len(order) {
		return nil, nil, fmt.Errorf(
			"gg: worker: expected %d binary path(s) (%v), got %d argument(s)",
			len(order), order, len(argv),
		)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	w := &Worker{
		registry:   registry,
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
		binPaths:   make(map[string]string, len(order)),
		numOutputs: MaxFanout,
	}
	for i, name := range order {
		w.binPaths[name] = argv[i]
	}
	return w, argv[len(order):], nil
}

func (w *Worker) nextOutputFile() (string, error) {
	if w.nextOutput >= w.numOutputs {
		return "", fmt.Errorf("gg: worker: exhausted all %d output slots", w.numOutputs)
	}
	name := fmt.Sprintf("%03d", w.nextOutput)
	w.nextOutput++
	return name, nil
}

// UnusedOutputs lists the numbered output slots nothing was written to,
// still needing a touch so the back-end sees a complete output set.
func (w *Worker) UnusedOutputs() []string {
	var out []string
	for i := w.nextOutput; i < w.numOutputs; i++ {
		out = append(out, fmt.Sprintf("%03d", i))
	}
	return out
}

// TouchUnusedOutputs creates an empty file for every output slot nothing
// wrote to (spec.md §4.5, §9 — the empty-file semantics is load-bearing).
func (w *Worker) TouchUnusedOutputs() error {
	for _, name := range w.UnusedOutputs() {
		f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("gg: worker: touch unused output %q: %w", name, err)
		}
		f.Close()
	}
	return nil
}

// HashFile implements Hasher by shelling out to the resolved gg-hash-static
// binary, consulting the memoization cache first.
func (w *Worker) HashFile(path string) (Hash, error) {
	return hashFileCached(path, w.cache, w.metrics, func(p string) (Hash, error) {
		out, err := w.runTool(w.binPaths["gg-hash-static"], p)
		if err != nil {
			return "", err
		}
		return Hash(trimTrailingNewline(out)), nil
	})
}

// runTool shells out to path, logging and recording the invocation.
func (w *Worker) runTool(path string, args ...string) (string, error) {
	start := time.Now()
	out, err := runTool(path, args...)
	w.metrics.ObserveSubprocess(path, time.Since(start), err)
	w.logger.Debug("ran back-end tool", slog.String("path", path), slog.Any("args", args), slog.Any("error", err))
	return out, err
}

// SaveBytes writes data into the next numbered output slot (or destPath when
// given) and returns its recomputed hash.
func (w *Worker) SaveBytes(data []byte, destPath string) (Hash, error) {
	path := destPath
	if path == "" {
		var err error
		path, err = w.nextOutputFile()
		if err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("gg: worker: save bytes to %s: %w", path, err)
	}
	return w.HashFile(path)
}

// SavePath moves the file at path into the next numbered output slot (or
// destPath when given) and returns its recomputed hash.
func (w *Worker) SavePath(path string, destPath string) (Hash, error) {
	dest := destPath
	if dest == "" {
		var err error
		dest, err = w.nextOutputFile()
		if err != nil {
			return "", err
		}
	}
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("gg: worker: save path %s to %s: %w", path, dest, err)
	}
	return w.HashFile(dest)
}

// ThunkLocationArgs always emits --output-path <slot> (spec.md §4.5): workers
// never leave a thunk's root output unpinned. Slot exhaustion is propagated
// rather than papered over with a bogus out-of-range name (spec.md §7).
func (w *Worker) ThunkLocationArgs(destPath string) ([]string, error) {
	path := destPath
	if path == "" {
		// Reserve a slot now so --output-path names something concrete; the
		// reservation is consumed for real the moment the caller saves into it.
		name, err := w.nextOutputFile()
		if err != nil {
			return nil, err
		}
		path = name
	}
	return []string{"--output-path", path}, nil
}

func (w *Worker) ScriptHash() (Hash, error) { return w.HashFile(scriptPath) }
func (w *Worker) LibHash() (Hash, error)    { return w.HashFile(scriptPath) }

func (w *Worker) BinHash(name string) (Hash, error) {
	path, ok := w.binPaths[name]
	if !ok {
		return "", fmt.Errorf("gg: worker: binary %q was never installed", name)
	}
	return w.HashFile(path)
}

func (w *Worker) BinPath(name string) string {
	p, ok := w.binPaths[name]
	if !ok {
		panic(fmt.Sprintf("gg: worker: binary %q was never installed", name))
	}
	return p
}
