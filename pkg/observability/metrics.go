package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the console client
type Metrics struct {
	// HTTP client metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Resource cache metrics
	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	CacheInvalidationsTotal *prometheus.CounterVec
	CacheEntries            prometheus.Gauge

	// Session metrics
	SessionTransitionsTotal *prometheus.CounterVec
	SessionExpiriesTotal    prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swconsole_http_requests_total",
				Help: "Total number of backend requests issued by the client",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swconsole_http_request_duration_seconds",
				Help:    "Backend request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swconsole_cache_hits_total",
				Help: "Resource cache hits by resource name",
			},
			[]string{"resource"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swconsole_cache_misses_total",
				Help: "Resource cache misses by resource name",
			},
			[]string{"resource"},
		),
		CacheInvalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swconsole_cache_invalidations_total",
				Help: "Resource cache invalidations by resource name",
			},
			[]string{"resource"},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "swconsole_cache_entries",
				Help: "Current number of resource cache entries",
			},
		),
		SessionTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swconsole_session_transitions_total",
				Help: "Session state transitions by target state",
			},
			[]string{"state"},
		),
		SessionExpiriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "swconsole_session_expiries_total",
				Help: "Forced logouts caused by a 401 from the backend",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheInvalidationsTotal,
		m.CacheEntries,
		m.SessionTransitionsTotal,
		m.SessionExpiriesTotal,
	)

	return m
}

// Handler returns an HTTP handler exposing the registry, for the optional
// debug listener in long-running mode.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
