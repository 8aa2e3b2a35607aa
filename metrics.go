package gg

import "time"

// MetricsRecorder observes hashing and back-end subprocess activity. It is
// defined here, in terms of plain strings and durations only, so that
// internal/ggmetrics's Recorder can satisfy it without this package ever
// importing internal/ggmetrics — Run (dispatch.go) builds the recorder and
// passes it down into the library, never the other way.
type MetricsRecorder interface {
	// ObserveHash records where a content hash came from ("cache" or
	// "subprocess") and how long the lookup took.
	ObserveHash(source string, d time.Duration)
	// ObserveSubprocess records one back-end binary invocation.
	ObserveSubprocess(tool string, d time.Duration, err error)
	// ObserveThunkSerialized records one completed Serialize call.
	ObserveThunkSerialized()
}

// noopMetrics discards every observation; it backs a Coordinator, Worker or
// Runtime constructed without a recorder.
type noopMetrics struct{}

func (noopMetrics) ObserveHash(string, time.Duration)        {}
func (noopMetrics) ObserveSubprocess(string, time.Duration, error) {}
func (noopMetrics) ObserveThunkSerialized()                  {}
