// Package metrics provides Prometheus metrics for enrichment runs
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EnrichMetrics contains Prometheus metrics for batch enrichment. A nil
// *EnrichMetrics records nothing.
type EnrichMetrics struct {
	registry *prometheus.Registry

	rowsTotal         *prometheus.CounterVec
	skipsTotal        *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	checkpointsTotal  *prometheus.CounterVec
	imagesTotal       *prometheus.CounterVec
	rowDuration       prometheus.Histogram
	lastCheckpointRow prometheus.Gauge
}

// NewEnrichMetrics creates enrichment metrics registered on registry.
func NewEnrichMetrics(registry *prometheus.Registry) (*EnrichMetrics, error) {
	m := &EnrichMetrics{registry: registry}
	m.initMetrics()

	for _, c := range []prometheus.Collector{
		m.rowsTotal, m.skipsTotal, m.errorsTotal, m.checkpointsTotal,
		m.imagesTotal, m.rowDuration, m.lastCheckpointRow,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *EnrichMetrics) initMetrics() {
	m.rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enricher_rows_total",
			Help: "Rows processed, by final state",
		},
		[]string{"state"}, // state: persisted, skipped
	)

	m.skipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enricher_row_skips_total",
			Help: "Skipped rows, by reason",
		},
		[]string{"reason"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enricher_collaborator_errors_total",
			Help: "Collaborator failures, by stage and error kind",
		},
		[]string{"stage", "kind"},
	)

	m.checkpointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enricher_checkpoints_total",
			Help: "Catalog flushes to storage",
		},
		[]string{"status"}, // status: success, error
	)

	m.imagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enricher_images_total",
			Help: "Images seen on listings and added to records",
		},
		[]string{"event"}, // event: discovered, added, main_set
	)

	m.rowDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enricher_row_duration_seconds",
			Help:    "Time spent on one row including pacing",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	m.lastCheckpointRow = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enricher_last_checkpoint_row",
			Help: "Rows processed at the most recent successful checkpoint",
		},
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *EnrichMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRow counts a finished row.
func (m *EnrichMetrics) RecordRow(state, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues(state).Inc()
	if reason != "" {
		m.skipsTotal.WithLabelValues(reason).Inc()
	}
	m.rowDuration.Observe(d.Seconds())
}

// RecordError counts a recoverable collaborator failure.
func (m *EnrichMetrics) RecordError(stage, kind string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(stage, kind).Inc()
}

// RecordImages counts images found on a listing and those merged into a record.
func (m *EnrichMetrics) RecordImages(discovered, added int, mainSet bool) {
	if m == nil {
		return
	}
	m.imagesTotal.WithLabelValues("discovered").Add(float64(discovered))
	m.imagesTotal.WithLabelValues("added").Add(float64(added))
	if mainSet {
		m.imagesTotal.WithLabelValues("main_set").Inc()
	}
}

// RecordCheckpoint counts a flush attempt.
func (m *EnrichMetrics) RecordCheckpoint(processed int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.checkpointsTotal.WithLabelValues("error").Inc()
		return
	}
	m.checkpointsTotal.WithLabelValues("success").Inc()
	m.lastCheckpointRow.Set(float64(processed))
}
