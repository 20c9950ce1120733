// Package observability provides structured logging, Prometheus metrics and
// optional OpenTelemetry tracing for the Streamweave console client.
//
// # Overview
//
// Logging uses a thin wrapper over stdlib slog with JSON output and field
// chaining. Metrics cover the client-side HTTP traffic, the resource cache
// and session transitions; they are exposed through an optional promhttp
// listener when the console runs in a long-lived mode. Tracing is opt-in and
// wraps the HTTP transport with otelhttp when enabled.
//
// # Key Components
//
// Logger: structured JSON logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)
//	logger.WithField("resource", "instruments").Info("cache invalidated")
//
// Metrics: Prometheus collectors for the client
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	m.HTTPRequestsTotal.WithLabelValues("GET", "200").Inc()
//
// OTel: optional tracer provider for the HTTP transport
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
package observability
