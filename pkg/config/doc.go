// Package config provides console configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Backend settings:
//
//	SW_API_URL="https://streamweave.example.org"
//	SW_HTTP_TIMEOUT="30s"
//	SW_TOKEN_PATH="~/.config/streamweave/token"
//
// Cache settings:
//
//	SW_CACHE_SIZE="512"
//	SW_CACHE_TTL="5m"
//	SW_CACHE_REFRESH_AFTER="2m30s"
//
// Observability settings:
//
//	SW_LOG_LEVEL="info"  # debug, info, warn, error
//	SW_METRICS_ENABLED="false"
//	SW_METRICS_ADDR="localhost:9090"
//	SW_OTEL_ENABLED="false"
//	SW_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Backend: %s\n", cfg.API.BaseURL)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/tokenstore: Uses the token path
//   - pkg/resource: Uses the cache configuration
//   - pkg/observability: Uses the observability configuration
package config
