package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/resource"
	"github.com/streamweave/console/pkg/tokenstore"
)

// Config holds all console configuration
type Config struct {
	// API configuration
	API APIConfig

	// Cache configuration
	Cache CacheConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	// BaseURL is the Streamweave backend, e.g. https://streamweave.example.org
	BaseURL string

	// Timeout bounds a single request
	Timeout time.Duration

	// TokenPath is where the bearer token is kept on disk
	TokenPath string
}

// CacheConfig holds resource cache configuration
type CacheConfig struct {
	Size int
	TTL  time.Duration

	// RefreshAfter is the age past which a cache hit triggers a background
	// refresh
	RefreshAfter time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool
	MetricsAddr    string

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		API:           loadAPIConfig(),
		Cache:         loadCacheConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadAPIConfig loads backend connection configuration from environment
func loadAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:   getEnv("SW_API_URL", "http://localhost:8000"),
		Timeout:   getEnvDuration("SW_HTTP_TIMEOUT", 30*time.Second),
		TokenPath: getEnv("SW_TOKEN_PATH", tokenstore.DefaultPath()),
	}
}

// loadCacheConfig loads resource cache configuration from environment
func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Size:         getEnvInt("SW_CACHE_SIZE", resource.DefaultCacheSize),
		TTL:          getEnvDuration("SW_CACHE_TTL", resource.DefaultTTL),
		RefreshAfter: getEnvDuration("SW_CACHE_REFRESH_AFTER", resource.DefaultTTL/2),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("SW_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("SW_METRICS_ENABLED", false),
		MetricsAddr:        getEnv("SW_METRICS_ADDR", "localhost:9090"),
		OTelEnabled:        getEnvBool("SW_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("SW_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("SW_OTEL_SERVICE_NAME", "streamweave-console"),
		OTelServiceVersion: getEnv("SW_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("SW_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid API base URL: %s", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive")
	}
	if c.API.TokenPath == "" {
		return fmt.Errorf("token path is required")
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Cache.RefreshAfter <= 0 || c.Cache.RefreshAfter > c.Cache.TTL {
		return fmt.Errorf("cache refresh age must be positive and at most the TTL")
	}

	if c.Observability.MetricsEnabled && c.Observability.MetricsAddr == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
