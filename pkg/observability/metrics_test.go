package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.HTTPRequestsTotal.WithLabelValues("GET", "200").Inc()
	m.CacheHitsTotal.WithLabelValues("instruments").Add(3)
	m.SessionExpiriesTotal.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("instruments")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionExpiriesTotal))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.HTTPRequestsTotal.WithLabelValues("GET", "200").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "swconsole_http_requests_total")
}

func TestMetricsDoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	assert.Panics(t, func() { NewMetrics(registry) })
}
