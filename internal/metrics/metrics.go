// Package metrics exposes per-run migration counters through prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects counts for one migration run. It owns its registry so
// parallel test runs do not share state.
type Recorder struct {
	registry *prometheus.Registry
	imported *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		imported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cemigrate_records_imported_total",
			Help: "Records written to the destination, by import step",
		}, []string{"step"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cemigrate_records_skipped_total",
			Help: "Source records skipped because a dependency was not imported",
		}, []string{"step"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cemigrate_step_failures_total",
			Help: "Import steps that aborted with an error",
		}, []string{"step"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cemigrate_step_duration_seconds",
			Help: "Wall time spent in each import step",
		}, []string{"step"}),
	}
}

// Observe records the outcome of one step.
func (r *Recorder) Observe(step string, imported, skipped int, elapsed time.Duration, failed bool) {
	r.imported.WithLabelValues(step).Add(float64(imported))
	r.skipped.WithLabelValues(step).Add(float64(skipped))
	r.duration.WithLabelValues(step).Set(elapsed.Seconds())
	if failed {
		r.failures.WithLabelValues(step).Inc()
	}
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
