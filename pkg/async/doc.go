// Package async provides safe concurrent execution primitives for background
// tasks in the console client.
//
// # Overview
//
// This package handles goroutine lifecycle management with panic recovery,
// timeout enforcement and context cancellation. The resource layer uses it
// for background cache refreshes so that an abandoned refresh can never crash
// the process or outlive its deadline.
//
// # Key Functions
//
// SafeGo: Execute function in goroutine with safety features
//
//	async.SafeGo(ctx, 30*time.Second, "refresh instruments", logger, func(ctx context.Context) error {
//		return syncer.Refresh(ctx)
//	})
//
// # Features
//
// Panic Recovery: Captures panics with stack traces
// Timeout Enforcement: Per-task timeouts
// Context Cancellation: Respects context cancellation
package async
