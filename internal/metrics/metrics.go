// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the reconciliation run.
//
// The package is intentionally minimal:
//
//   - A narrow Backend interface focused on counters and timings.
//   - A global, pluggable backend defaulting to a no-op implementation, so
//     metrics are always safe to call when nothing is configured.
//
// The use case is instrumentation of the batch stages (load, normalize,
// filter, join, resolve, sink) without coupling the pipeline to a concrete
// metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

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

// RecordStep measures latency plus success/failure for one pipeline step.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("openlines_step_total", 1, lbls)
	backend.ObserveHistogram("openlines_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds mirror the run summary fields, e.g.:
//   - "sales", "picking", "stock", "customer", "purchase_orders" (rows read)
//   - "active" (rows surviving the active filter)
//   - "output" (rows written to the artifact)
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("openlines_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
