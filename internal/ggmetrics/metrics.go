// Package ggmetrics publishes Prometheus metrics for one gg process. A
// coordinator or worker invocation is short-lived, not a server, so there is
// no HTTP handler here: instead Recorder writes a Prometheus text-exposition
// file at process exit, the node_exporter "textfile collector" convention,
// so a fleet of short-lived invocations can still be scraped in aggregate
// via a shared directory node_exporter watches.
package ggmetrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// HashSource identifies where a content hash came from. It is a plain string
// alias (not a distinct named type) so that Recorder's ObserveHash method
// structurally satisfies gg.MetricsRecorder, which is defined in terms of
// string and must not import this package.
type HashSource = string

const (
	// HashSourceCache indicates the hash memoization cache answered.
	HashSourceCache HashSource = "cache"
	// HashSourceSubprocess indicates gg-hash-static was actually invoked.
	HashSourceSubprocess HashSource = "subprocess"
)

// Recorder publishes metrics for hashing and back-end subprocess activity.
type Recorder struct {
	registry *prometheus.Registry

	hashLookups  *prometheus.CounterVec
	hashDuration *prometheus.HistogramVec

	subprocessCalls    *prometheus.CounterVec
	subprocessDuration *prometheus.HistogramVec

	thunksSerialized prometheus.Counter
}

// NewRecorder constructs a Recorder backed by a dedicated registry, so
// multiple recorders (e.g. in tests) never conflict with each other or with
// the global default registerer.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	hashLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gg",
		Subsystem: "hash",
		Name:      "lookups_total",
		Help:      "Content hash lookups, by source (cache or subprocess).",
	}, []string{"source"})

	hashDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gg",
		Subsystem: "hash",
		Name:      "lookup_duration_seconds",
		Help:      "Latency distribution for content hash lookups.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"source"})

	subprocessCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gg",
		Subsystem: "backend",
		Name:      "subprocess_calls_total",
		Help:      "Back-end binary invocations, by tool and outcome.",
	}, []string{"tool", "outcome"})

	subprocessDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gg",
		Subsystem: "backend",
		Name:      "subprocess_duration_seconds",
		Help:      "Latency distribution for back-end binary invocations.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"tool"})

	thunksSerialized := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gg",
		Subsystem: "thunk",
		Name:      "serialized_total",
		Help:      "Thunks serialized into gg-create-thunk-static invocations.",
	})

	reg.MustRegister(hashLookups, hashDuration, subprocessCalls, subprocessDuration, thunksSerialized)

	return &Recorder{
		registry:           reg,
		hashLookups:        hashLookups,
		hashDuration:       hashDuration,
		subprocessCalls:    subprocessCalls,
		subprocessDuration: subprocessDuration,
		thunksSerialized:   thunksSerialized,
	}
}

// ObserveHash records where a content hash came from and how long it took.
func (r *Recorder) ObserveHash(source HashSource, d time.Duration) {
	if r == nil {
		return
	}
	label := string(source)
	r.hashLookups.WithLabelValues(label).Inc()
	r.hashDuration.WithLabelValues(label).Observe(d.Seconds())
}

// ObserveSubprocess records a back-end binary invocation.
func (r *Recorder) ObserveSubprocess(tool string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.subprocessCalls.WithLabelValues(tool, outcome).Inc()
	r.subprocessDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveThunkSerialized records one completed Serialize call.
func (r *Recorder) ObserveThunkSerialized() {
	if r == nil {
		return
	}
	r.thunksSerialized.Inc()
}

// WriteTextfile renders every registered metric family in Prometheus text
// exposition format to path, atomically via a temp-file rename so a
// concurrently-running node_exporter never reads a half-written file.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("ggmetrics: gather: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gg-metrics-*.prom")
	if err != nil {
		return fmt.Errorf("ggmetrics: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := expfmt.NewEncoder(tmp, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			tmp.Close()
			return fmt.Errorf("ggmetrics: encode metric family: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ggmetrics: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ggmetrics: rename into place: %w", err)
	}
	return nil
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
