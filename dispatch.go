package gg

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alex-ozdemir/gg/internal/ggcache"
	"github.com/alex-ozdemir/gg/internal/ggconfig"
	"github.com/alex-ozdemir/gg/internal/gglog"
	"github.com/alex-ozdemir/gg/internal/ggmetrics"
	"github.com/alex-ozdemir/gg/internal/ggscaffold"
	"github.com/alex-ozdemir/gg/internal/ggwatch"
)

// Run is the entry point every gg program's main calls with its populated
// Registry. It re-enters the process according to os.Args[1]:
//
//	init  <thunk> <primitive-arg>*                — coordinator mode
//	exec  <bin-path>* <thunk> <resolved-arg>*     — worker mode
//	new   <path> <thunk-name>                     — scaffold a new thunk file
//	watch <thunk> <primitive-arg>*                — re-run init on source change
//
// It returns a process exit code; main is expected to be a two-line wrapper
// around os.Exit(gg.Run(registry)).
func Run(r *Registry) int {
	return run(r, os.Args[1:])
}

func run(r *Registry, argv []string) int {
	cfg, err := ggconfig.NewLoader("GG").Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: configuration: %v\n", err)
		return 1
	}

	logger, err := gglog.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: logging: %v\n", err)
		return 1
	}

	if cfg.BinPath != "" {
		path := os.Getenv("PATH")
		if err := os.Setenv("PATH", cfg.BinPath+string(os.PathListSeparator)+path); err != nil {
			fmt.Fprintf(os.Stderr, "gg: set PATH: %v\n", err)
			return 1
		}
	}

	rawCache, err := ggcache.New(cfg.Cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: cache: %v\n", err)
		return 1
	}
	cache := adaptCache(rawCache)

	recorder := ggmetrics.NewRecorder()
	defer func() {
		if err := recorder.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warn("failed to write metrics textfile", slog.Any("error", err))
		}
	}()

	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "gg: usage: <script> {init|exec|new|watch} ...")
		return 1
	}

	switch argv[0] {
	case "init":
		return runInit(r, argv[1:], cache, logger, recorder)
	case "exec":
		return runExec(r, argv[1:], cache, logger, recorder)
	case "new":
		return runNew(argv[1:], logger)
	case "watch":
		return runWatch(r, argv[1:], cache, logger, recorder)
	default:
		fmt.Fprintf(os.Stderr, "gg: unknown mode %q (expected init, exec, new, or watch)\n", argv[0])
		return 1
	}
}

func runInit(r *Registry, args []string, cache MemoCache, logger *slog.Logger, metrics MetricsRecorder) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "gg: usage: <script> init <thunk> <arg>*")
		return 1
	}
	thunkName, rest := args[0], args[1:]

	coord, err := NewCoordinator(r, cache, logger, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: coordinator: %v\n", err)
		return 1
	}

	fn, ok := r.Lookup(thunkName)
	if !ok {
		fmt.Fprintf(os.Stderr, "gg: no registered thunk function %q\n", thunkName)
		return 1
	}

	t, err := NewThunkFromStrings(fn, rest...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: %v\n", err)
		return 1
	}

	rt := &Runtime{Registry: r, Role: coord, Logger: logger, Metrics: metrics}
	h, err := Serialize(rt, t, "out")
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: serialize: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stderr, string(h))
	return 0
}

func runExec(r *Registry, args []string, cache MemoCache, logger *slog.Logger, metrics MetricsRecorder) int {
	worker, rest, err := NewWorker(r, args, cache, logger, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: worker: %v\n", err)
		return 1
	}
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "gg: usage: <script> exec <bin-path>* <thunk> <resolved-arg>*")
		return 1
	}
	thunkName, rest := rest[0], rest[1:]

	fn, ok := r.Lookup(thunkName)
	if !ok {
		fmt.Fprintf(os.Stderr, "gg: no registered thunk function %q\n", thunkName)
		return 1
	}

	t, err := NewThunkFromStrings(fn, rest...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: %v\n", err)
		return 1
	}

	rt := &Runtime{Registry: r, Role: worker, Logger: logger, Metrics: metrics}
	result, err := t.Exec(rt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gg: exec %q: %v\n", thunkName, err)
		return 1
	}
	if _, err := SaveOutput(rt, result, "out"); err != nil {
		fmt.Fprintf(os.Stderr, "gg: save output: %v\n", err)
		return 1
	}
	if err := worker.TouchUnusedOutputs(); err != nil {
		fmt.Fprintf(os.Stderr, "gg: %v\n", err)
		return 1
	}
	return 0
}

func runNew(args []string, logger *slog.Logger) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "gg: usage: <script> new <path> <thunk-name>")
		return 1
	}
	path, thunkName := args[0], args[1]
	if err := ggscaffold.WriteThunkFile(path, thunkName); err != nil {
		fmt.Fprintf(os.Stderr, "gg: new: %v\n", err)
		return 1
	}
	logger.Info("scaffolded thunk file", slog.String("path", path), slog.String("thunk", thunkName))
	return 0
}

func runWatch(r *Registry, args []string, cache MemoCache, logger *slog.Logger, metrics MetricsRecorder) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "gg: usage: <script> watch <thunk> <arg>*")
		return 1
	}
	onReload := func() int {
		return runInit(r, args, cache, logger, metrics)
	}
	if err := ggwatch.Run(".", logger, onReload); err != nil {
		fmt.Fprintf(os.Stderr, "gg: watch: %v\n", err)
		return 1
	}
	return 0
}

// adaptCache wraps internal/ggcache's string-keyed Cache as a gg.MemoCache.
// ggcache cannot itself import this package (dispatch.go already imports
// ggcache; a dependency the other way would cycle), so this boundary
// adapter lives here instead.
func adaptCache(c ggcache.Cache) MemoCache {
	if c == nil {
		return nil
	}
	return cacheAdapter{c}
}

type cacheAdapter struct{ c ggcache.Cache }

func (a cacheAdapter) Get(path string, size int64, modTimeUnixNano int64) (Hash, bool) {
	s, ok := a.c.Get(path, size, modTimeUnixNano)
	return Hash(s), ok
}

func (a cacheAdapter) Put(path string, size int64, modTimeUnixNano int64, h Hash) {
	a.c.Put(path, size, modTimeUnixNano, string(h))
}
