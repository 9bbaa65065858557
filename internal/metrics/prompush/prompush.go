// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. One-shot batch jobs cannot be scraped, so the run's
// counters are pushed to a Pushgateway at flush time instead.
//
// All Prometheus-specific dependencies live here so the rest of the project
// can swap metric systems without touching the pipeline.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/hristo-banchev/terraloc-ingest/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string // Pushgateway "job" grouping key
	reg        *prometheus.Registry

	recordCounter *prometheus.CounterVec // ingest_records_total
	chunkCounter  *prometheus.CounterVec // ingest_chunks_total
	chunkDuration *prometheus.SummaryVec // ingest_chunk_duration_seconds
	runCounter    *prometheus.CounterVec // ingest_runs_total
	runDuration   *prometheus.SummaryVec // ingest_run_duration_seconds
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway job grouping; gatewayURL is the base URL of the server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "terraloc_ingest"
	}

	reg := prometheus.NewRegistry()

	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_total",
			Help: "Record-level counts per dataset and kind (processed, imported, invalid, errors).",
		},
		[]string{"dataset", "kind"},
	)
	chunkCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_chunks_total",
			Help: "Total number of chunks persisted per dataset.",
		},
		[]string{"dataset"},
	)
	chunkDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "ingest_chunk_duration_seconds",
			Help:       "Per-chunk persistence latency in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"dataset"},
	)
	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Completed ingestion runs per dataset and status.",
		},
		[]string{"dataset", "status"},
	)
	runDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "ingest_run_duration_seconds",
			Help: "Full-run wall-clock time in seconds.",
		},
		[]string{"dataset", "status"},
	)

	for _, c := range []prometheus.Collector{recordCounter, chunkCounter, chunkDuration, runCounter, runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		recordCounter: recordCounter,
		chunkCounter:  chunkCounter,
		chunkDuration: chunkDuration,
		runCounter:    runCounter,
		runDuration:   runDuration,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "ingest_records_total":
		if b.recordCounter != nil {
			b.recordCounter.WithLabelValues(labels["dataset"], labels["kind"]).Add(delta)
		}
	case "ingest_chunks_total":
		if b.chunkCounter != nil {
			b.chunkCounter.WithLabelValues(labels["dataset"]).Add(delta)
		}
	case "ingest_runs_total":
		if b.runCounter != nil {
			b.runCounter.WithLabelValues(labels["dataset"], labels["status"]).Add(delta)
		}
	default:
		// unknown metric name: ignore
	}
}

// ObserveDuration implements metrics.Backend.
func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	switch name {
	case "ingest_chunk_duration_seconds":
		if b.chunkDuration != nil {
			b.chunkDuration.WithLabelValues(labels["dataset"]).Observe(value)
		}
	case "ingest_run_duration_seconds":
		if b.runDuration != nil {
			b.runDuration.WithLabelValues(labels["dataset"], labels["status"]).Observe(value)
		}
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
