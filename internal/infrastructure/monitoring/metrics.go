package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Connector metrics
	CommandsTotal *prometheus.CounterVec

	// Volume metrics
	VolumeOps        *prometheus.CounterVec
	VolumeOpDuration *prometheus.HistogramVec
	IngestedFiles    *prometheus.CounterVec
	VolumesMounted   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a collector set on its own registry, so several
// instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finder_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finder_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finder_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finder_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finder_connector_commands_total",
				Help: "Connector commands by name and outcome",
			},
			[]string{"cmd", "result"},
		),

		VolumeOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finder_volume_operations_total",
				Help: "Volume operations by outcome",
			},
			[]string{"volume", "op", "result"},
		),
		VolumeOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finder_volume_operation_duration_seconds",
				Help:    "Volume operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"volume", "op"},
		),
		IngestedFiles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finder_volume_ingested_files_total",
				Help: "Uploaded files by whether they were saved",
			},
			[]string{"volume", "result"},
		),
		VolumesMounted: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "finder_volumes_mounted",
				Help: "Number of mounted volumes",
			},
		),
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordCommand records one connector command.
func (m *Metrics) RecordCommand(cmd, result string) {
	m.CommandsTotal.WithLabelValues(cmd, result).Inc()
}

// RecordVolumeOp records one volume operation.
func (m *Metrics) RecordVolumeOp(volumeID, op, result string, duration time.Duration) {
	m.VolumeOps.WithLabelValues(volumeID, op, result).Inc()
	m.VolumeOpDuration.WithLabelValues(volumeID, op).Observe(duration.Seconds())
}

// RecordIngest records how many uploads were saved and skipped.
func (m *Metrics) RecordIngest(volumeID string, saved, skipped int) {
	m.IngestedFiles.WithLabelValues(volumeID, "saved").Add(float64(saved))
	m.IngestedFiles.WithLabelValues(volumeID, "skipped").Add(float64(skipped))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format. It never
// compresses; response compression is the server's gzip layer's job.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:           m.registry,
		DisableCompression: true,
	})
}
