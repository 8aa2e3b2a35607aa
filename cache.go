package gg

import (
	"os"
	"time"
)

// MemoCache memoizes gg-hash-static results keyed on a file's (path, size,
// mtime) — the cheapest signal that's wrong only when the file itself
// changed. It is a pure optimization: correctness never depends on a hit,
// and a nil MemoCache (the default) disables memoization entirely, falling
// back to always shelling out. internal/ggcache provides concrete
// implementations.
type MemoCache interface {
	Get(path string, size int64, modTimeUnixNano int64) (Hash, bool)
	Put(path string, size int64, modTimeUnixNano int64, h Hash)
}

// hashFileCached consults cache before calling raw, populating the cache on
// a miss. A stat failure (or a nil cache) just falls through to raw so the
// caller sees the same error raw would have produced on its own. metrics
// (never nil; NewCoordinator and NewWorker default it to a no-op) observes which path was taken and
// how long it spent.
func hashFileCached(path string, cache MemoCache, metrics MetricsRecorder, raw func(string) (Hash, error)) (Hash, error) {
	if cache == nil {
		start := time.Now()
		h, err := raw(path)
		metrics.ObserveHash("subprocess", time.Since(start))
		return h, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		start := time.Now()
		h, err := raw(path)
		metrics.ObserveHash("subprocess", time.Since(start))
		return h, err
	}
	start := time.Now()
	if h, ok := cache.Get(path, fi.Size(), fi.ModTime().UnixNano()); ok {
		metrics.ObserveHash("cache", time.Since(start))
		return h, nil
	}
	h, err := raw(path)
	metrics.ObserveHash("subprocess", time.Since(start))
	if err != nil {
		return "", err
	}
	cache.Put(path, fi.Size(), fi.ModTime().UnixNano(), h)
	return h, nil
}
