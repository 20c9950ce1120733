package async

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/streamweave/console/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestSafeGoRunsTask(t *testing.T) {
	done := make(chan struct{})

	SafeGo(context.Background(), time.Second, "test", testLogger(), func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestSafeGoRecoversPanic(t *testing.T) {
	ran := make(chan struct{})

	SafeGo(context.Background(), time.Second, "panicking", testLogger(), func(ctx context.Context) error {
		defer close(ran)
		panic("boom")
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	// Reaching here without the test process dying is the assertion.
}

func TestSafeGoEnforcesTimeout(t *testing.T) {
	var expired atomic.Bool
	done := make(chan struct{})

	SafeGo(context.Background(), 10*time.Millisecond, "slow", testLogger(), func(ctx context.Context) error {
		<-ctx.Done()
		expired.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		close(done)
		return ctx.Err()
	})

	select {
	case <-done:
		assert.True(t, expired.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("task context never expired")
	}
}

func TestSafeGoNoError(t *testing.T) {
	done := make(chan struct{})

	SafeGoNoError(context.Background(), time.Second, "no error", testLogger(), func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}
