package resource

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweave/console/pkg/observability"
)

type record struct {
	ID   string
	Name string
}

type fakeBackend struct {
	mu sync.Mutex

	listCalls atomic.Int64
	getCalls  atomic.Int64

	items   []record
	listErr error

	// blockList, when non-nil, is closed by the test to release an
	// in-flight list fetch.
	blockList chan struct{}
}

func (b *fakeBackend) ops() Operations[record] {
	return Operations[record]{
		List: func(ctx context.Context, filters Filters) ([]record, error) {
			b.listCalls.Add(1)
			if b.blockList != nil {
				<-b.blockList
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.listErr != nil {
				return nil, b.listErr
			}
			return append([]record(nil), b.items...), nil
		},
		Get: func(ctx context.Context, id string) (*record, error) {
			b.getCalls.Add(1)
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, r := range b.items {
				if r.ID == id {
					found := r
					return &found, nil
				}
			}
			return nil, errors.New("not found")
		},
		Create: func(ctx context.Context, data any) (*record, error) {
			r := data.(record)
			b.mu.Lock()
			defer b.mu.Unlock()
			b.items = append(b.items, r)
			return &r, nil
		},
		Delete: func(ctx context.Context, id string) error {
			return nil
		},
		Restore: func(ctx context.Context, id string) (*record, error) {
			return &record{ID: id}, nil
		},
		Update: func(ctx context.Context, id string, data any) (*record, error) {
			r := data.(record)
			return &r, nil
		},
	}
}

func newTestSyncer(t *testing.T, backend *fakeBackend) (*Syncer[record], *Cache) {
	t.Helper()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, time.Minute, logger, nil)
	return NewSyncer[record]("instruments", cache, backend.ops(), logger), cache
}

func TestListCachesResults(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1", Name: "NMR-1"}}}
	syncer, _ := newTestSyncer(t, backend)

	first, err := syncer.List(context.Background(), Filters{})
	require.NoError(t, err)
	second, err := syncer.List(context.Background(), Filters{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), backend.listCalls.Load(), "second read served from cache")
}

func TestListDistinctFiltersAreIndependent(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1"}}}
	syncer, cache := newTestSyncer(t, backend)

	_, err := syncer.List(context.Background(), Filters{})
	require.NoError(t, err)
	_, err = syncer.List(context.Background(), Filters{IncludeDeleted: true})
	require.NoError(t, err)

	assert.Equal(t, int64(2), backend.listCalls.Load(), "distinct filters map to distinct cache keys")
	assert.Equal(t, 2, cache.Len())
}

func TestGetEmptyIDIssuesNoRequest(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1"}}}
	syncer, _ := newTestSyncer(t, backend)

	got, err := syncer.Get(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(0), backend.getCalls.Load())
}

func TestWriteInvalidatesOwnResourceOnly(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1"}}}
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, time.Minute, logger, nil)
	instruments := NewSyncer[record]("instruments", cache, backend.ops(), logger)

	other := &fakeBackend{items: []record{{ID: "s1"}}}
	schedules := NewSyncer[record]("schedules", cache, other.ops(), logger)

	_, err := instruments.List(context.Background(), Filters{})
	require.NoError(t, err)
	_, err = schedules.List(context.Background(), Filters{})
	require.NoError(t, err)

	_, err = instruments.Create(context.Background(), record{ID: "2", Name: "XRD-1"})
	require.NoError(t, err)

	// Next instruments read refetches; schedules read does not.
	_, err = instruments.List(context.Background(), Filters{})
	require.NoError(t, err)
	_, err = schedules.List(context.Background(), Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), backend.listCalls.Load(), "instruments refetched after write")
	assert.Equal(t, int64(1), other.listCalls.Load(), "schedules cache untouched")
}

func TestFailedReadKeepsLastKnownGood(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1", Name: "NMR-1"}}}
	syncer, cache := newTestSyncer(t, backend)

	good, err := syncer.List(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, good, 1)

	// Force a refetch and make it fail.
	cache.Invalidate("instruments")
	backend.mu.Lock()
	backend.listErr = errors.New("network down")
	backend.mu.Unlock()

	items, err := syncer.List(context.Background(), Filters{})
	require.Error(t, err)
	assert.Equal(t, good, items, "previous payload survives a failed refetch")
}

func TestLateFetchResponseIsDiscarded(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "old"}}, blockList: make(chan struct{})}
	syncer, cache := newTestSyncer(t, backend)

	done := make(chan struct{})
	go func() {
		defer close(done)
		syncer.List(context.Background(), Filters{})
	}()

	// Wait for the fetch to be in flight, then invalidate (a write landed).
	require.Eventually(t, func() bool { return backend.listCalls.Load() == 1 }, time.Second, time.Millisecond)
	cache.Invalidate("instruments")
	close(backend.blockList)
	<-done

	// The in-flight response must not have populated the cache.
	_, ok := cache.Get("instruments", "list?")
	assert.False(t, ok)
}

func TestConcurrentIdenticalListsCollapse(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1"}}, blockList: make(chan struct{})}
	syncer, _ := newTestSyncer(t, backend)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syncer.List(context.Background(), Filters{})
		}()
	}

	require.Eventually(t, func() bool { return backend.listCalls.Load() >= 1 }, time.Second, time.Millisecond)
	close(backend.blockList)
	wg.Wait()

	assert.Equal(t, int64(1), backend.listCalls.Load(), "identical concurrent reads share one fetch")
}

func TestBackgroundRefreshAfterAge(t *testing.T) {
	backend := &fakeBackend{items: []record{{ID: "1"}}}
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, time.Minute, logger, nil)
	syncer := NewSyncer[record]("instruments", cache, backend.ops(), logger,
		WithRefreshAfter[record](10*time.Millisecond))

	_, err := syncer.List(context.Background(), Filters{})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	// Aging hit: served from cache, refreshed in background.
	_, err = syncer.List(context.Background(), Filters{})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return backend.listCalls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestListRetriesFailedFetchAfterRefreshAge(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("network down")}
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, time.Minute, logger, nil)
	syncer := NewSyncer[record]("instruments", cache, backend.ops(), logger,
		WithRefreshAfter[record](10*time.Millisecond))

	_, err := syncer.List(context.Background(), Filters{})
	require.Error(t, err)

	// A fresh failure is served from cache without another request.
	_, err = syncer.List(context.Background(), Filters{})
	require.Error(t, err)
	assert.Equal(t, int64(1), backend.listCalls.Load())

	// The backend recovers; past the refresh age the failed entry is retried
	// instead of pinning the error until the TTL evicts it.
	backend.mu.Lock()
	backend.listErr = nil
	backend.items = []record{{ID: "1", Name: "NMR-1"}}
	backend.mu.Unlock()
	time.Sleep(30 * time.Millisecond)

	items, err := syncer.List(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(2), backend.listCalls.Load())
}

func TestGetRetriesFailedFetchAfterRefreshAge(t *testing.T) {
	backend := &fakeBackend{}
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, time.Minute, logger, nil)
	syncer := NewSyncer[record]("instruments", cache, backend.ops(), logger,
		WithRefreshAfter[record](10*time.Millisecond))

	_, err := syncer.Get(context.Background(), "1")
	require.Error(t, err)
	_, err = syncer.Get(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, int64(1), backend.getCalls.Load())

	backend.mu.Lock()
	backend.items = []record{{ID: "1", Name: "NMR-1"}}
	backend.mu.Unlock()
	time.Sleep(30 * time.Millisecond)

	got, err := syncer.Get(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "NMR-1", got.Name)
	assert.Equal(t, int64(2), backend.getCalls.Load())
}

func TestReadOnlyResourceRejectsWrites(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, time.Minute, logger, nil)
	backend := &fakeBackend{}
	ops := backend.ops()
	ops.Create = nil
	ops.Update = nil
	ops.Delete = nil
	ops.Restore = nil
	syncer := NewSyncer[record]("audit-logs", cache, ops, logger)

	_, err := syncer.Create(context.Background(), record{})
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = syncer.Update(context.Background(), "1", record{})
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.ErrorIs(t, syncer.Delete(context.Background(), "1"), ErrNotSupported)
	_, err = syncer.Restore(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotSupported)
}
