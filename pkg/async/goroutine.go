package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/streamweave/console/pkg/observability"
)

// SafeGo executes a function in a goroutine with:
// - Context cancellation support
// - Panic recovery
// - Timeout enforcement
// - Error logging
//
// Use this instead of bare `go func()` to prevent goroutine leaks and crashes.
// A task error is logged, not propagated; the caller already moved on.
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, logger *observability.Logger, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(map[string]interface{}{
					"task":  taskName,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic in background task")
			}
		}()

		if err := fn(ctx); err != nil {
			logger.WithError(err).WithField("task", taskName).Warn("background task failed")
		}
	}()
}

// SafeGoNoError is like SafeGo but for functions that don't return errors.
// Still provides panic recovery and context support.
func SafeGoNoError(parentCtx context.Context, timeout time.Duration, taskName string, logger *observability.Logger, fn func(context.Context)) {
	SafeGo(parentCtx, timeout, taskName, logger, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}
