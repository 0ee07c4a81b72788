package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accident_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset load metrics.
	DatasetRows    *prometheus.GaugeVec   // labels: dataset={accidents,vehicles}
	DatasetDropped *prometheus.CounterVec // labels: dataset={accidents,vehicles}
	DatasetReady   prometheus.Gauge

	// View computation metrics.
	ViewsComputed *prometheus.CounterVec // labels: view={bar,map}
	ViewDuration  *prometheus.HistogramVec
	FilteredRows  prometheus.Histogram
	ViewCache     *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetRows,
		m.DatasetDropped,
		m.DatasetReady,
		m.ViewsComputed,
		m.ViewDuration,
		m.FilteredRows,
		m.ViewCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows held in memory per dataset after dropping incomplete rows.",
		}, []string{"dataset"}),
		DatasetDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_dropped_rows_total",
			Help:      "Rows dropped at load time because a field was missing.",
		}, []string{"dataset"}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 once the accident dataset is loaded, 0 otherwise.",
		}),
		ViewsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_computed_total",
			Help:      "Chart views computed by view type.",
		}, []string{"view"}),
		ViewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_duration_seconds",
			Help:      "Time spent computing a chart view.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"view"}),
		FilteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_rows",
			Help:      "Accident rows matching a checklist selection.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),
		ViewCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_cache_total",
			Help:      "Bar view cache lookups by result.",
		}, []string{"result"}),
	}
}
