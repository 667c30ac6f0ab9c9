package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Dashboard metrics
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	liveCharts      prometheus.Gauge
	sessionsActive  prometheus.Gauge
	exportsTotal    *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finboard_backend_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"endpoint", "status"},
	)
	r.backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finboard_backend_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	r.liveCharts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "finboard_live_charts",
			Help: "Number of chart instances bound to a canvas",
		},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "finboard_sessions_active",
			Help: "Number of visitor sessions held in memory",
		},
	)
	r.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finboard_exports_total",
			Help: "Total number of snapshot exports",
		},
		[]string{"status"},
	)

	reg.MustRegister(r.backendRequests)
	reg.MustRegister(r.backendDuration)
	reg.MustRegister(r.liveCharts)
	reg.MustRegister(r.sessionsActive)
	reg.MustRegister(r.exportsTotal)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordBackendRequest records a backend API call. status is the HTTP code or "error".
func (r *Registry) RecordBackendRequest(endpoint, status string, seconds float64) {
	r.backendRequests.WithLabelValues(endpoint, status).Inc()
	r.backendDuration.WithLabelValues(endpoint).Observe(seconds)
}

// AddLiveCharts adjusts the live chart gauge.
func (r *Registry) AddLiveCharts(delta float64) {
	r.liveCharts.Add(delta)
}

// SetSessions sets the number of active sessions.
func (r *Registry) SetSessions(n int) {
	r.sessionsActive.Set(float64(n))
}

// RecordExport records a snapshot export.
func (r *Registry) RecordExport(status string) {
	r.exportsTotal.WithLabelValues(status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
