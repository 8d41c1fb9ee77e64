package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Dashboard load metrics
	DashboardLoadsTotal    *prometheus.CounterVec
	DashboardLoadDuration  *prometheus.HistogramVec
	DashboardLoadsInFlight prometheus.Gauge
	PollRegistrations      prometheus.Counter

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec

	// Proxy metrics
	ProxyResponsesTotal *prometheus.CounterVec

	// View metrics
	ViewsRendered        *prometheus.CounterVec
	DrilldownTransitions *prometheus.CounterVec
}

// New registers the collectors with the default Prometheus registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		DashboardLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_loads_total",
				Help: "Total number of dashboard snapshot loads",
			},
			[]string{"trigger", "status"},
		),

		DashboardLoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_load_duration_seconds",
				Help:    "Dashboard snapshot load duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"trigger"},
		),

		DashboardLoadsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_loads_in_flight",
				Help: "Number of dashboard loads currently waiting on the backend",
			},
		),

		PollRegistrations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_poll_registrations_total",
				Help: "Number of times the poll timer was registered",
			},
		),

		ExternalAPICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_calls_total",
				Help: "Total number of external API calls",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "external_api_duration_seconds",
				Help:    "External API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_failures_total",
				Help: "Total number of external API failures",
			},
			[]string{"api", "error_type"},
		),

		ProxyResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxy_responses_total",
				Help: "Total number of proxied dashboard responses",
			},
			[]string{"status_code"},
		),

		ViewsRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_views_rendered_total",
				Help: "Total number of dashboard views derived from a snapshot",
			},
			[]string{"view"},
		),

		DrilldownTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_drilldown_transitions_total",
				Help: "Total number of drill-down panel transitions",
			},
			[]string{"phase"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Dashboard load outcome; status is success, failure or discarded
func (m *Metrics) RecordDashboardLoad(trigger, status string, duration time.Duration) {
	m.DashboardLoadsTotal.WithLabelValues(trigger, status).Inc()
	m.DashboardLoadDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

func (m *Metrics) RecordPollRegistration() {
	m.PollRegistrations.Inc()
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// External API failure metrics
func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

func (m *Metrics) RecordProxyResponse(statusCode string) {
	m.ProxyResponsesTotal.WithLabelValues(statusCode).Inc()
}

func (m *Metrics) RecordView(view string) {
	m.ViewsRendered.WithLabelValues(view).Inc()
}

func (m *Metrics) RecordDrilldownTransition(phase string) {
	m.DrilldownTransitions.WithLabelValues(phase).Inc()
}

// Dashboard loads in flight
func (m *Metrics) IncLoadsInFlight() {
	m.DashboardLoadsInFlight.Inc()
}

// Dashboard loads in flight
func (m *Metrics) DecLoadsInFlight() {
	m.DashboardLoadsInFlight.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
