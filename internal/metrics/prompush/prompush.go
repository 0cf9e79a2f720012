// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. The ingestion CLI is a batch process, so metrics are
// collected in a private registry and pushed once per run instead of being
// exposed on a scrape endpoint.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"nycetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	runCounter   *prometheus.CounterVec // nycetl_runs_total
	runDuration  *prometheus.SummaryVec // nycetl_run_duration_seconds
	rowCounter   *prometheus.CounterVec // nycetl_rows_total
	batchCounter *prometheus.CounterVec // nycetl_batches_total
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// "job" grouping; it defaults to "nycetl".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "nycetl"
	}

	reg := prometheus.NewRegistry()

	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycetl_runs_total",
			Help: "Dataset runs, partitioned by dataset and status.",
		},
		[]string{"dataset", "status"},
	)
	runDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "nycetl_run_duration_seconds",
			Help:       "Dataset run duration in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"dataset", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycetl_rows_total",
			Help: "Row counts per dataset and kind (read, dropped, deduped, inserted).",
		},
		[]string{"dataset", "kind"},
	)
	batchCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycetl_batches_total",
			Help: "Committed insert batches per dataset.",
		},
		[]string{"dataset"},
	)

	for _, c := range []prometheus.Collector{runCounter, runDuration, rowCounter, batchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		runCounter:   runCounter,
		runDuration:  runDuration,
		rowCounter:   rowCounter,
		batchCounter: batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "nycetl_runs_total":
		b.runCounter.WithLabelValues(labels["dataset"], labels["status"]).Add(delta)
	case "nycetl_rows_total":
		b.rowCounter.WithLabelValues(labels["dataset"], labels["kind"]).Add(delta)
	case "nycetl_batches_total":
		b.batchCounter.WithLabelValues(labels["dataset"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, seconds float64, labels metrics.Labels) {
	if name != "nycetl_run_duration_seconds" {
		return
	}
	b.runDuration.WithLabelValues(labels["dataset"], labels["status"]).Observe(seconds)
}

// Flush pushes the registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
