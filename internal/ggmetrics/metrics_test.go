package ggmetrics

import (
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, r *Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func TestRecorderObserveHash(t *testing.T) {
	r := NewRecorder()
	r.ObserveHash(HashSourceCache, 2*time.Millisecond)
	r.ObserveHash(HashSourceSubprocess, 10*time.Millisecond)

	mf := gather(t, r, "gg_hash_lookups_total")
	require.Len(t, mf.GetMetric(), 2)
}

func TestRecorderObserveSubprocessAndThunk(t *testing.T) {
	r := NewRecorder()
	r.ObserveSubprocess("gg-hash-static", 5*time.Millisecond, nil)
	r.ObserveThunkSerialized()

	calls := gather(t, r, "gg_backend_subprocess_calls_total")
	require.Len(t, calls.GetMetric(), 1)
	require.Equal(t, float64(1), calls.GetMetric()[0].GetCounter().GetValue())

	serialized := gather(t, r, "gg_thunk_serialized_total")
	require.Equal(t, float64(1), serialized.GetMetric()[0].GetCounter().GetValue())
}

func TestRecorderWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveThunkSerialized()

	path := filepath.Join(t.TempDir(), "gg.prom")
	require.NoError(t, r.WriteTextfile(path))
	require.FileExists(t, path)
}

func TestRecorderNilIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveHash(HashSourceCache, time.Millisecond)
	r.ObserveSubprocess("gg-init", time.Millisecond, nil)
	r.ObserveThunkSerialized()
	require.NoError(t, r.WriteTextfile(""))
}
