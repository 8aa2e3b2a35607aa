// Package ggwatch drives gg's "watch" dev-mode subcommand: it re-runs the
// coordinator's init flow whenever the script's source tree changes. It is
// never invoked by the back-end — worker re-entry is always "exec" — so the
// debounce-and-reload loop here only ever runs interactively, on a
// developer's machine, one source tree at a time.
package ggwatch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 150 * time.Millisecond

// Reload is called once at start, then again after every debounced burst of
// filesystem changes. Run discards its return value: a failing reload is not
// reported and does not stop the watch.
type Reload func() int

// Run walks root for Go source directories, watches them with fsnotify, and
// invokes reload once up front and again after every debounced write,
// create, rename, or remove of a .go file. It returns only on an
// unrecoverable watcher error; an interactive user stops it with SIGINT.
func Run(root string, logger *slog.Logger, reload Reload) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ggwatch: new watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return fmt.Errorf("ggwatch: watch %s: %w", root, err)
	}

	logger.Info("watch: initial build")
	reload()

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-fire:
			fire = nil
			logger.Info("watch: source changed, rebuilding")
			reload()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isGoSource(event.Name) {
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: error", slog.Any("error", err))
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == ".gg" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func isGoSource(name string) bool {
	return strings.HasSuffix(name, ".go")
}
