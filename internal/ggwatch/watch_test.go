package ggwatch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestRunReloadsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(srcPath, []byte("package main\n"), 0o644))

	var reloads int32
	done := make(chan struct{})
	reload := func() int {
		n := atomic.AddInt32(&reloads, 1)
		if n == 2 {
			close(done)
		}
		return 0
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(dir, logger, reload)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(srcPath, []byte("package main\n\nfunc main() {}\n"), 0o644))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload after source change")
	}
	require.GreaterOrEqual(t, atomic.LoadInt32(&reloads), int32(2))
}

func TestAddTreeSkipsGGDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".gg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gg", "junk"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addTree(watcher, dir))
	require.Contains(t, watcher.WatchList(), dir)
	require.NotContains(t, watcher.WatchList(), filepath.Join(dir, ".gg"))
}
