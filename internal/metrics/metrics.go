// Package metrics records operational counters for ingestion runs behind a
// pluggable backend, mirroring the storage abstraction: the pipeline depends
// only on this package, and concrete systems (Prometheus Pushgateway,
// Datadog) live in subpackages. The default backend is a no-op, so recording
// is always safe even when nothing is configured.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system implements.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style observation in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes buffered metrics, for backends that batch (e.g. a
	// Pushgateway push at the end of a run).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
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

// RecordRun records one completed (or failed) dataset run with its duration.
func RecordRun(dataset string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"dataset": dataset, "status": status}
	backend.IncCounter("nycetl_runs_total", 1, lbls)
	backend.ObserveDuration("nycetl_run_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter. Kinds mirror the run stats:
// "read", "dropped", "deduped", "inserted".
func RecordRows(dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("nycetl_rows_total", float64(delta), Labels{
		"dataset": dataset,
		"kind":    kind,
	})
}

// RecordBatches counts committed insert batches.
func RecordBatches(dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("nycetl_batches_total", float64(delta), Labels{
		"dataset": dataset,
	})
}
