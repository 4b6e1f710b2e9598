// Package metrics holds the Prometheus instruments for flows, provider calls
// and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the service
type Metrics struct {
	// Flow metrics
	FlowRuns       *prometheus.CounterVec
	FlowDuration   *prometheus.HistogramVec
	FlowsInFlight  prometheus.Gauge
	ProviderCalls  *prometheus.CounterVec
	MediaBytesOut  *prometheus.HistogramVec
	WavEncodeBytes prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
	WebSocketClients    prometheus.Gauge
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FlowRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "musickly_flow_runs_total",
			Help: "Total number of flow runs by outcome",
		}, []string{"flow", "outcome"}),
		FlowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "musickly_flow_duration_seconds",
			Help:    "Duration of flow runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 11), // 100ms to ~100s
		}, []string{"flow"}),
		FlowsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "musickly_flows_in_flight",
			Help: "Current number of running flows",
		}),
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "musickly_provider_calls_total",
			Help: "Total number of provider calls by kind and outcome",
		}, []string{"kind", "outcome"}),
		MediaBytesOut: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "musickly_media_bytes",
			Help:    "Size of media data URIs produced by providers",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}, []string{"source"}),
		WavEncodeBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "musickly_wav_encode_bytes",
			Help:    "Size of PCM buffers wrapped by the WAV endpoint",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "musickly_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "musickly_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "musickly_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
		WebSocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "musickly_websocket_clients",
			Help: "Current number of connected WebSocket clients",
		}),
	}
}

// RecordFlow records one finished flow run.
func (m *Metrics) RecordFlow(flow, outcome string, durationSeconds float64) {
	m.FlowRuns.WithLabelValues(flow, outcome).Inc()
	m.FlowDuration.WithLabelValues(flow).Observe(durationSeconds)
}

// FlowStarted increments the in-flight gauge and returns its decrement.
func (m *Metrics) FlowStarted() func() {
	m.FlowsInFlight.Inc()
	return m.FlowsInFlight.Dec
}

// RecordProviderCall counts one call to a provider of the given kind.
func (m *Metrics) RecordProviderCall(kind, outcome string) {
	m.ProviderCalls.WithLabelValues(kind, outcome).Inc()
}

// RecordMedia records the size of a media data URI built from provider output.
func (m *Metrics) RecordMedia(source string, sizeBytes int) {
	m.MediaBytesOut.WithLabelValues(source).Observe(float64(sizeBytes))
}

// RecordWavEncode records a PCM buffer handled by the WAV endpoint.
func (m *Metrics) RecordWavEncode(sizeBytes int) {
	m.WavEncodeBytes.Observe(float64(sizeBytes))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
