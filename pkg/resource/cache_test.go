package resource

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweave/console/pkg/observability"
)

func newTestCache() *Cache {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewCache(64, time.Minute, logger, nil)
}

func TestCacheGetMiss(t *testing.T) {
	cache := newTestCache()

	_, ok := cache.Get("instruments", "list?")
	assert.False(t, ok)
}

func TestCacheSetSuccessAndGet(t *testing.T) {
	cache := newTestCache()
	version := cache.Version("instruments")

	require.True(t, cache.SetSuccess("instruments", "list?", []string{"a"}, version))

	entry, ok := cache.Get("instruments", "list?")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, entry.Status)
	assert.Equal(t, []string{"a"}, entry.Payload)
}

func TestCacheKeyIsolationAcrossFilters(t *testing.T) {
	cache := newTestCache()
	version := cache.Version("instruments")

	cache.SetSuccess("instruments", "list?include_deleted=true", []string{"a", "b"}, version)
	cache.SetSuccess("instruments", "list?", []string{"a"}, version)

	all, ok := cache.Get("instruments", "list?include_deleted=true")
	require.True(t, ok)
	live, ok2 := cache.Get("instruments", "list?")
	require.True(t, ok2)

	assert.Equal(t, []string{"a", "b"}, all.Payload)
	assert.Equal(t, []string{"a"}, live.Payload)
}

func TestCacheInvalidateIsResourceScoped(t *testing.T) {
	cache := newTestCache()

	cache.SetSuccess("instruments", "list?", []string{"i"}, cache.Version("instruments"))
	cache.SetSuccess("schedules", "list?", []string{"s"}, cache.Version("schedules"))

	cache.Invalidate("instruments")

	_, ok := cache.Get("instruments", "list?")
	assert.False(t, ok, "instrument entries removed")

	entry, ok := cache.Get("schedules", "list?")
	require.True(t, ok, "schedule entries untouched")
	assert.Equal(t, []string{"s"}, entry.Payload)
}

func TestCacheDiscardsStaleFetchResults(t *testing.T) {
	cache := newTestCache()

	// A fetch starts, then a write invalidates the resource before the
	// response lands.
	version := cache.Version("instruments")
	cache.Invalidate("instruments")

	applied := cache.SetSuccess("instruments", "list?", []string{"stale"}, version)
	assert.False(t, applied)

	_, ok := cache.Get("instruments", "list?")
	assert.False(t, ok, "stale result must not be cached")

	// A fetch issued after the invalidation applies fine.
	applied = cache.SetSuccess("instruments", "list?", []string{"fresh"}, cache.Version("instruments"))
	assert.True(t, applied)
}

func TestCacheSetErrorKeepsLastKnownGood(t *testing.T) {
	cache := newTestCache()
	version := cache.Version("instruments")

	cache.SetSuccess("instruments", "list?", []string{"good"}, version)
	cache.SetError("instruments", "list?", errors.New("network down"), version)

	entry, ok := cache.Get("instruments", "list?")
	require.True(t, ok)
	assert.Equal(t, StatusError, entry.Status)
	assert.EqualError(t, entry.Err, "network down")
	assert.Equal(t, []string{"good"}, entry.Payload, "previous payload retained")
}

func TestCacheTTLExpiry(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cache := NewCache(64, 20*time.Millisecond, logger, nil)

	cache.SetSuccess("instruments", "list?", []string{"a"}, cache.Version("instruments"))
	time.Sleep(50 * time.Millisecond)

	_, ok := cache.Get("instruments", "list?")
	assert.False(t, ok, "entries expire after the TTL")
}

func TestCacheDefaults(t *testing.T) {
	cache := NewCache(0, 0, nil, nil)
	assert.NotNil(t, cache)
	assert.Zero(t, cache.Len())
}
