package resource

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/streamweave/console/pkg/observability"
)

// Status is the lifecycle of a cache entry.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one cached query result. On a failed refetch the previous payload
// stays in place with StatusError and Err set, so screens keep showing
// last-known-good data next to the error flag.
type Entry struct {
	Status    Status
	Payload   any
	Err       error
	FetchedAt time.Time
	Version   uint64
}

// DefaultCacheSize bounds the number of cached query results.
const DefaultCacheSize = 512

// DefaultTTL is how long an entry may serve reads before it is evicted.
const DefaultTTL = 5 * time.Minute

// Cache is the shared client-side cache behind every Syncer. It is an
// explicitly owned singleton: construct one per process (or per test) and
// inject it, never reach for a package-level instance.
//
// Mutation is serialized. The runtime hazard is ordering of asynchronous
// completions, which the per-resource version counter resolves: a write
// bumps the version, and a fetch result carrying an older version is
// discarded on arrival.
type Cache struct {
	mu       sync.Mutex
	entries  *lru.LRU[string, *Entry]
	versions map[string]uint64

	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewCache creates a cache. size <= 0 and ttl <= 0 fall back to the defaults.
func NewCache(size int, ttl time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:  lru.NewLRU[string, *Entry](size, nil, ttl),
		versions: make(map[string]uint64),
		logger:   logger,
		metrics:  metrics,
	}
}

// Version returns the current version of a resource name. Fetches capture it
// before going to the network.
func (c *Cache) Version(resource string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[resource]
}

// Get returns the entry for (resource, key), or false on a miss.
func (c *Cache) Get(resource, key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(c.entryKey(resource, key))
	if c.metrics != nil {
		if ok {
			c.metrics.CacheHitsTotal.WithLabelValues(resource).Inc()
		} else {
			c.metrics.CacheMissesTotal.WithLabelValues(resource).Inc()
		}
	}
	return entry, ok
}

// SetSuccess stores a successful fetch result. version is the resource
// version captured when the fetch was issued; a result from before the most
// recent invalidation is discarded, and SetSuccess reports whether the
// result was applied.
func (c *Cache) SetSuccess(resource, key string, payload any, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.versions[resource] {
		if c.logger != nil {
			c.logger.WithField("resource", resource).Debug("discarding stale fetch result")
		}
		return false
	}

	c.entries.Add(c.entryKey(resource, key), &Entry{
		Status:    StatusSuccess,
		Payload:   payload,
		FetchedAt: time.Now(),
		Version:   version,
	})
	c.updateGauge()
	return true
}

// SetError records a failed fetch. The previous payload, if any, is kept so
// readers retain last-known-good data. Stale failures are discarded like
// stale successes.
func (c *Cache) SetError(resource, key string, fetchErr error, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.versions[resource] {
		return false
	}

	fullKey := c.entryKey(resource, key)
	entry := &Entry{
		Status:    StatusError,
		Err:       fetchErr,
		FetchedAt: time.Now(),
		Version:   version,
	}
	if prev, ok := c.entries.Get(fullKey); ok {
		entry.Payload = prev.Payload
	}
	c.entries.Add(fullKey, entry)
	c.updateGauge()
	return true
}

// Invalidate marks every entry of a resource name stale and removes it.
// Invalidation is resource-scoped: other resources' entries are untouched.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[resource]++

	prefix := resource + "|"
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
		}
	}

	if c.metrics != nil {
		c.metrics.CacheInvalidationsTotal.WithLabelValues(resource).Inc()
	}
	if c.logger != nil {
		c.logger.WithField("resource", resource).Debug("cache invalidated")
	}
	c.updateGauge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *Cache) entryKey(resource, key string) string {
	return resource + "|" + key
}

func (c *Cache) updateGauge() {
	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(c.entries.Len()))
	}
}
