// Package metrics exposes the counters of a parser run in Prometheus form.
//
// A batch run has no scrape endpoint; metrics are written to a textfile
// picked up by the node exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/importparser/internal/core"
)

const namespace = "importparser"

// Run holds the metrics of one run in a private registry.
type Run struct {
	registry *prometheus.Registry

	linesRead    *prometheus.CounterVec
	linesWritten *prometheus.CounterVec
	linesRemoved *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	duration     *prometheus.GaugeVec
	lastSuccess  *prometheus.GaugeVec
}

// NewRun registers the run metrics.
func NewRun() *Run {
	labels := []string{"type"}
	m := &Run{
		registry: prometheus.NewRegistry(),
		linesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_read_total",
			Help: "Data lines read from the source file.",
		}, labels),
		linesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_written_total",
			Help: "Rows written to the destination file.",
		}, labels),
		linesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_removed_total",
			Help: "Rows dropped by a hard failure.",
		}, labels),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "anomalies_total",
			Help: "Row references recorded per report category.",
		}, []string{"type", "category", "hard"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Duration of the last run.",
		}, labels),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time the last successful run finished.",
		}, labels),
	}
	m.registry.MustRegister(
		m.linesRead, m.linesWritten, m.linesRemoved,
		m.anomalies, m.duration, m.lastSuccess,
	)
	return m
}

// Observe records a finished run.
func (m *Run) Observe(r *core.Report) {
	m.linesRead.WithLabelValues(r.RecordType).Add(float64(r.LinesTotal))
	m.linesWritten.WithLabelValues(r.RecordType).Add(float64(r.LinesWritten))
	m.linesRemoved.WithLabelValues(r.RecordType).Add(float64(r.LinesRemovedTotal))
	for _, info := range r.NonEmpty() {
		m.anomalies.WithLabelValues(r.RecordType, string(info.Category), fmt.Sprint(info.Hard)).
			Add(float64(r.Count(info.Category)))
	}
	m.duration.WithLabelValues(r.RecordType).Set(r.Elapsed.Seconds())
	m.lastSuccess.WithLabelValues(r.RecordType).Set(float64(r.StartedAt.Add(r.Elapsed).Unix()))
}

// Gatherer returns the registry holding the run metrics.
func (m *Run) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format to path.
func (m *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
