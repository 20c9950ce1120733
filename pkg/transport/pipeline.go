package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/streamweave/console/pkg/observability"
)

// RequestMutator transforms a request immediately before dispatch.
type RequestMutator func(*http.Request) error

// ResponseMutator inspects a response immediately after dispatch. Mutators
// observe and perform side effects; the response itself is always propagated
// to the caller unchanged.
type ResponseMutator func(*http.Response)

// Pipeline is an http.RoundTripper applying an ordered list of request and
// response mutators around a base transport.
type Pipeline struct {
	base             http.RoundTripper
	requestMutators  []RequestMutator
	responseMutators []ResponseMutator
	metrics          *observability.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRequestMutators appends request mutators, applied in order.
func WithRequestMutators(mutators ...RequestMutator) Option {
	return func(p *Pipeline) {
		p.requestMutators = append(p.requestMutators, mutators...)
	}
}

// WithResponseMutators appends response mutators, applied in order.
func WithResponseMutators(mutators ...ResponseMutator) Option {
	return func(p *Pipeline) {
		p.responseMutators = append(p.responseMutators, mutators...)
	}
}

// WithMetrics records request counts and durations on the given metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTracing wraps the base transport with otelhttp instrumentation.
func WithTracing() Option {
	return func(p *Pipeline) {
		p.base = otelhttp.NewTransport(p.base)
	}
}

// NewPipeline creates a pipeline around base. A nil base uses
// http.DefaultTransport.
func NewPipeline(base http.RoundTripper, opts ...Option) *Pipeline {
	if base == nil {
		base = http.DefaultTransport
	}
	p := &Pipeline{base: base}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RoundTrip implements http.RoundTripper.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())

	for _, mutate := range p.requestMutators {
		if err := mutate(req); err != nil {
			return nil, fmt.Errorf("request mutator failed: %w", err)
		}
	}

	start := time.Now()
	resp, err := p.base.RoundTrip(req)
	if p.metrics != nil {
		p.metrics.HTTPRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		p.metrics.HTTPRequestsTotal.WithLabelValues(req.Method, status).Inc()
	}
	if err != nil {
		return nil, err
	}

	for _, mutate := range p.responseMutators {
		mutate(resp)
	}

	return resp, nil
}
