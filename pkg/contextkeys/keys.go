// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the client must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/streamweave/console/pkg/contextkeys"
//   ctx = contextkeys.WithAuthExempt(ctx)
//   if contextkeys.IsAuthExempt(ctx) { ... }
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthExemptKey marks a request as exempt from the global session-expiry
	// handling. A 401 on an exempt request is a local error for the caller,
	// not a signal that an existing session expired.
	// Set by: api.Client.Login (pkg/api)
	// Read by: transport.SessionExpiry (pkg/transport)
	// Type: bool
	AuthExemptKey Key = "auth_exempt"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: transport.RequestID (pkg/transport)
	// Used by: Logger, tracing
	// Type: string
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: callers that want request-scoped logging
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// WithAuthExempt marks the context as exempt from session-expiry handling.
func WithAuthExempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, AuthExemptKey, true)
}

// IsAuthExempt reports whether the context carries the auth-exempt mark.
func IsAuthExempt(ctx context.Context) bool {
	exempt, ok := ctx.Value(AuthExemptKey).(bool)
	return ok && exempt
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context, or "" when absent.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
