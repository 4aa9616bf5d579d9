package logger

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "satops"

// Metrics tracks what a run did: items processed and failed per operation, pages
// rendered and time spent in the document renderer. Collectors are registered on a
// private registry so runs never share state.
type Metrics struct {
	registry  *prometheus.Registry
	processed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	pages     prometheus.Counter
	render    prometheus.Histogram
}

// NewMetrics creates a metrics tracker with zeroed collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_processed_total",
			Help:      "Items (attendees, schedule days) handled successfully.",
		}, []string{"operation"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_failed_total",
			Help:      "Items that failed, by pipeline stage.",
		}, []string{"operation", "stage"}),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Printed pages produced by the layout engine.",
		}),
		render: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent converting one HTML document to PDF.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
	m.registry.MustRegister(m.processed, m.failed, m.pages, m.render)
	return m
}

var defaultMetrics = NewMetrics()

// IncrProcessed counts one successfully handled item
func (m *Metrics) IncrProcessed(operation string) {
	m.processed.WithLabelValues(operation).Inc()
}

// AddProcessed counts n successfully handled items
func (m *Metrics) AddProcessed(operation string, n int) {
	m.processed.WithLabelValues(operation).Add(float64(n))
}

// IncrFailed counts one failed item
func (m *Metrics) IncrFailed(operation, stage string) {
	m.failed.WithLabelValues(operation, stage).Inc()
}

// AddPages adds to the rendered page counter
func (m *Metrics) AddPages(n int) {
	m.pages.Add(float64(n))
}

// RecordRender records the duration of one render
func (m *Metrics) RecordRender(d time.Duration) {
	m.render.Observe(d.Seconds())
}

// Registry exposes the registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format,
// atomically, for the node-exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// DefaultMetrics returns the process-wide tracker
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
