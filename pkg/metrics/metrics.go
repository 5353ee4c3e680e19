// Package metrics defines the Prometheus metric collectors for the
// translation service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	DocumentsTotal       *prometheus.CounterVec
	DocumentDuration     prometheus.Histogram
	DocumentPages        prometheus.Histogram
	ChunksTranslated     prometheus.Counter
	ChunksFailed         *prometheus.CounterVec
	ChunkLatency         prometheus.Histogram
	FieldsExtracted      prometheus.Histogram
	SummaryFallbackTotal prometheus.Counter
	QueueDepth           prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_total",
				Help: "Documents processed by outcome (completed, failed, empty).",
			},
			[]string{"outcome"},
		),
		DocumentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "document_duration_seconds",
				Help:    "End-to-end document processing time in seconds.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		DocumentPages: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "document_pages",
				Help:    "Pages per processed document.",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
		ChunksTranslated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chunks_translated_total",
				Help: "Chunks successfully translated.",
			},
		),
		ChunksFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunks_failed_total",
				Help: "Chunks that fell back to original text, by failure kind.",
			},
			[]string{"kind"},
		),
		ChunkLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chunk_translation_seconds",
				Help:    "Per-chunk translation latency in seconds.",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 60},
			},
		),
		FieldsExtracted: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fields_extracted",
				Help:    "Structured fields extracted per document.",
				Buckets: []float64{0, 1, 2, 4, 6, 8, 10, 12},
			},
		),
		SummaryFallbackTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "summary_fallback_total",
				Help: "Summaries served from the field synopsis fallback.",
			},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "translation_queue_depth",
				Help: "Queued translation tasks awaiting a worker.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DocumentsTotal,
		m.DocumentDuration,
		m.DocumentPages,
		m.ChunksTranslated,
		m.ChunksFailed,
		m.ChunkLatency,
		m.FieldsExtracted,
		m.SummaryFallbackTotal,
		m.QueueDepth,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
