// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the ingestion pipeline.
//
// It exposes a narrow interface (Backend) for counters and timing data, with
// a global, pluggable backend that defaults to a no-op implementation, so
// metric calls are always safe even when no real backend is configured. The
// concrete metric systems live in subpackages (e.g. prompush for the
// Prometheus Pushgateway), keeping the core pipeline decoupled from any
// particular system.
//
// These are operational/export metrics; the run's authoritative counters are
// the ingest.Metrics value the pipeline returns.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a latency/duration style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRows increments a record-level counter for the given dataset and
// kind. Kinds mirror the run summary fields: "processed", "imported",
// "invalid", "errors".
func RecordRows(dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ingest_records_total", float64(delta), Labels{
		"dataset": dataset,
		"kind":    kind,
	})
}

// RecordChunk increments the chunk counter and records the chunk's
// persistence latency.
func RecordChunk(dataset string, d time.Duration) {
	backend.IncCounter("ingest_chunks_total", 1, Labels{"dataset": dataset})
	backend.ObserveDuration("ingest_chunk_duration_seconds", d.Seconds(), Labels{"dataset": dataset})
}

// RecordRun records one full run with its outcome and elapsed time.
func RecordRun(dataset string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"dataset": dataset, "status": status}
	backend.IncCounter("ingest_runs_total", 1, lbls)
	backend.ObserveDuration("ingest_run_duration_seconds", d.Seconds(), lbls)
}
