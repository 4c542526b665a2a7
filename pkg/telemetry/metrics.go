package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Metrics = struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	QuestionsTotal      *prometheus.CounterVec
	MatchConfidence     prometheus.Histogram
	ActiveConnections   prometheus.Gauge
	ErrorsTotal         *prometheus.CounterVec
	FAQsLoaded          prometheus.Gauge
}{
	HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faqbot",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"}),

	HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "faqbot",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"}),

	QuestionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faqbot",
		Name:      "questions_total",
		Help:      "Answered questions by outcome (matched, unmatched, smalltalk, empty).",
	}, []string{"outcome"}),

	MatchConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "faqbot",
		Name:      "match_confidence",
		Help:      "Confidence of the best FAQ match per question.",
		Buckets:   []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
	}),

	ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "faqbot",
		Name:      "active_websocket_connections",
		Help:      "Number of active WebSocket chat connections.",
	}),

	ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faqbot",
		Name:      "errors_total",
		Help:      "Total errors by component.",
	}, []string{"component"}),

	FAQsLoaded: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "faqbot",
		Name:      "faqs_loaded",
		Help:      "Number of FAQ entries in the active index.",
	}),
}
