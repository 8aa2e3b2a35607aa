package gg

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Coordinator is the role that emits the initial DAG into the store. It
// wipes and recreates the .gg directory, gg-collects the running binary and
// every required back-end/user binary, and resolves binaries by searching
// the host path (spec.md §4.5).
type Coordinator struct {
	registry *Registry
	cache    MemoCache
	logger   *slog.Logger
	metrics  MetricsRecorder

	metaBin map[string]string // gg-init, gg-collect: resolved, never hashed

	binPaths  map[string]string
	binHashes map[string]Hash

	scriptHash Hash
}

// NewCoordinator constructs a Coordinator: wipes any prior .gg directory,
// runs gg-init, resolves and gg-collects the running binary plus every
// binary the registry requires, and computes their hashes. cache may be nil
// to disable hash memoization; logger/metrics may be nil, in which case
// Coordinator falls back to slog.Default and a no-op recorder.
func NewCoordinator(registry *Registry, cache MemoCache, logger *slog.Logger, metrics MetricsRecorder) (*Coordinator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	c := &Coordinator{
		registry:  registry,
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
		metaBin:   make(map[string]string),
		binPaths:  make(map[string]string),
		binHashes: make(map[string]Hash),
	}

	for _, name := range []string{"gg-init", "gg-collect"} {
		p, err := exec.LookPath(name)
		if err != nil {
			return nil, fmt.Errorf("gg: coordinator: resolve %s: %w", name, err)
		}
		c.metaBin[name] = p
	}

	c.logger.Debug("wiping .gg store")
	if err := os.RemoveAll(".gg"); err != nil {
		return nil, fmt.Errorf("gg: coordinator: wipe .gg: %w", err)
	}
	if _, err := c.runTool(c.metaBin["gg-init"]); err != nil {
		return nil, fmt.Errorf("gg: coordinator: gg-init: %w", err)
	}

	names := registry.InstallOrder()
	for _, name := range names {
		p, err := exec.LookPath(name)
		if err != nil {
			return nil, fmt.Errorf("gg: coordinator: resolve binary %q: %w", name, err)
		}
		c.binPaths[name] = p
	}
	if err := c.collect(scriptPath); err != nil {
		return nil, fmt.Errorf("gg: coordinator: collect script: %w", err)
	}
	for _, name := range names {
		if err := c.collect(c.binPaths[name]); err != nil {
			return nil, fmt.Errorf("gg: coordinator: collect binary %q: %w", name, err)
		}
	}

	for _, name := range names {
		h, err := c.HashFile(c.binPaths[name])
		if err != nil {
			return nil, fmt.Errorf("gg: coordinator: hash binary %q: %w", name, err)
		}
		c.binHashes[name] = h
	}
	h, err := c.HashFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("gg: coordinator: hash script: %w", err)
	}
	c.scriptHash = h

	return c, nil
}

func (c *Coordinator) collect(path string) error {
	_, err := c.runTool(c.metaBin["gg-collect"], path)
	return err
}

// HashFile implements Hasher by shelling out to the resolved gg-hash-static
// binary, consulting the memoization cache first.
func (c *Coordinator) HashFile(path string) (Hash, error) {
	return hashFileCached(path, c.cache, c.metrics, func(p string) (Hash, error) {
		out, err := c.runTool(c.binPaths["gg-hash-static"], p)
		if err != nil {
			return "", err
		}
		return Hash(trimTrailingNewline(out)), nil
	})
}

// runTool shells out to path, logging and recording the invocation.
func (c *Coordinator) runTool(path string, args ...string) (string, error) {
	start := time.Now()
	out, err := runTool(path, args...)
	c.metrics.ObserveSubprocess(path, time.Since(start), err)
	c.logger.Debug("ran back-end tool", slog.String("path", path), slog.Any("args", args), slog.Any("error", err))
	return out, err
}

// SaveBytes writes data to a temp file (or destPath when given) and
// gg-collects it, using gg-collect's own reported hash.
func (c *Coordinator) SaveBytes(data []byte, destPath string) (Hash, error) {
	path := destPath
	if path == "" {
		f, err := os.CreateTemp("", "gg-value-*")
		if err != nil {
			return "", fmt.Errorf("gg: coordinator: save bytes: %w", err)
		}
		path = f.Name()
		defer f.Close()
		if _, err := f.Write(data); err != nil {
			return "", fmt.Errorf("gg: coordinator: save bytes: %w", err)
		}
	} else {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("gg: coordinator: save bytes to %s: %w", path, err)
		}
	}
	out, err := c.runTool(c.metaBin["gg-collect"], path)
	if err != nil {
		return "", fmt.Errorf("gg: coordinator: save bytes: %w", err)
	}
	return Hash(trimTrailingNewline(out)), nil
}

// SavePath copies path to destPath (when given) and gg-collects the result,
// using gg-collect's own reported hash.
func (c *Coordinator) SavePath(path string, destPath string) (Hash, error) {
	src := path
	if destPath != "" {
		if err := copyFile(path, destPath); err != nil {
			return "", fmt.Errorf("gg: coordinator: save path %s: %w", path, err)
		}
		src = destPath
	}
	out, err := c.runTool(c.metaBin["gg-collect"], src)
	if err != nil {
		return "", fmt.Errorf("gg: coordinator: save path %s: %w", path, err)
	}
	return Hash(trimTrailingNewline(out)), nil
}

// ThunkLocationArgs emits --placeholder <destPath> when the caller specified
// a root output location, else nothing (spec.md §4.5). The coordinator never
// reserves a slot, so it never fails.
func (c *Coordinator) ThunkLocationArgs(destPath string) ([]string, error) {
	if destPath == "" {
		return nil, nil
	}
	return []string{"--placeholder", destPath}, nil
}

func (c *Coordinator) ScriptHash() (Hash, error) { return c.scriptHash, nil }
func (c *Coordinator) LibHash() (Hash, error)    { return c.scriptHash, nil }

func (c *Coordinator) BinHash(name string) (Hash, error) {
	h, ok := c.binHashes[name]
	if !ok {
		return "", fmt.Errorf("gg: coordinator: binary %q was never installed", name)
	}
	return h, nil
}

func (c *Coordinator) BinPath(name string) string {
	p, ok := c.binPaths[name]
	if !ok {
		panic(fmt.Sprintf("gg: coordinator: binary %q was never installed", name))
	}
	return p
}

func runTool(path string, args ...string) (string, error) {
	cmd := exec.Command(path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %v: %w\nstdout:\n%s\nstderr:\n%s", path, args, err, stdout.String(), stderr.String())
	}
	return stdout.String(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return nil
}

