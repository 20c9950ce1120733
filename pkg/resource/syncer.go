package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/streamweave/console/pkg/async"
	"github.com/streamweave/console/pkg/observability"
)

// ErrNotSupported is returned for operations a resource does not expose
// (files, transfers and audit logs are read-only).
var ErrNotSupported = errors.New("operation not supported for this resource")

// Operations are the backend calls behind a Syncer. Nil members mark
// operations the resource does not expose.
type Operations[T any] struct {
	List    func(ctx context.Context, filters Filters) ([]T, error)
	Get     func(ctx context.Context, id string) (*T, error)
	Create  func(ctx context.Context, data any) (*T, error)
	Update  func(ctx context.Context, id string, data any) (*T, error)
	Delete  func(ctx context.Context, id string) error
	Restore func(ctx context.Context, id string) (*T, error)
}

// Syncer synchronizes one backend resource type with the shared cache.
// All thirteen resource screens run on this one implementation; only the
// Operations differ.
type Syncer[T any] struct {
	name         string
	cache        *Cache
	ops          Operations[T]
	logger       *observability.Logger
	refreshAfter time.Duration
	group        singleflight.Group
}

// SyncerOption configures a Syncer.
type SyncerOption[T any] func(*Syncer[T])

// WithRefreshAfter sets the age past which a cache hit is served immediately
// but refreshed in the background. Defaults to half the cache TTL default.
func WithRefreshAfter[T any](d time.Duration) SyncerOption[T] {
	return func(s *Syncer[T]) {
		s.refreshAfter = d
	}
}

// NewSyncer creates a syncer for the named resource.
func NewSyncer[T any](name string, cache *Cache, ops Operations[T], logger *observability.Logger, opts ...SyncerOption[T]) *Syncer[T] {
	s := &Syncer[T]{
		name:         name,
		cache:        cache,
		ops:          ops,
		logger:       logger,
		refreshAfter: DefaultTTL / 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the resource name.
func (s *Syncer[T]) Name() string {
	return s.name
}

// List returns the collection for the given filters. A fresh cache entry is
// served as-is; an aging one is served immediately and refreshed in the
// background; a miss fetches synchronously. Concurrent identical fetches
// collapse into one request.
//
// On a failed fetch the previous payload (if any) is returned alongside the
// error, so callers keep last-known-good data. A failed entry is served until
// the refresh age and then retried, so a transient outage does not pin the
// error for the full TTL.
func (s *Syncer[T]) List(ctx context.Context, filters Filters) ([]T, error) {
	if s.ops.List == nil {
		return nil, ErrNotSupported
	}

	key := "list?" + filters.Encode()

	if entry, ok := s.cache.Get(s.name, key); ok {
		items, _ := entry.Payload.([]T)
		if entry.Status != StatusError {
			if time.Since(entry.FetchedAt) > s.refreshAfter {
				s.refreshList(key, filters)
			}
			return items, nil
		}
		// A recent failure is served as-is so every render does not hammer a
		// struggling backend; past the refresh age the entry counts as stale
		// and falls through to a retry.
		if time.Since(entry.FetchedAt) <= s.refreshAfter {
			return items, entry.Err
		}
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.fetchList(ctx, key, filters)
	})
	if err != nil {
		// Keep last-known-good data next to the error.
		if entry, ok := s.cache.Get(s.name, key); ok {
			items, _ := entry.Payload.([]T)
			return items, err
		}
		return nil, err
	}
	return result.([]T), nil
}

// Get returns a single record by id. An empty id issues no request and
// returns nothing: call sites pass possibly-absent ids unconditionally, and
// this guard is part of the contract, not an optimization.
func (s *Syncer[T]) Get(ctx context.Context, id string) (*T, error) {
	if s.ops.Get == nil {
		return nil, ErrNotSupported
	}
	if id == "" {
		return nil, nil
	}

	key := "get/" + id

	if entry, ok := s.cache.Get(s.name, key); ok {
		record, _ := entry.Payload.(*T)
		if entry.Status != StatusError {
			return record, nil
		}
		// Failed entries age out like aging lists: retry past the refresh age.
		if time.Since(entry.FetchedAt) <= s.refreshAfter {
			return record, entry.Err
		}
	}

	version := s.cache.Version(s.name)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		record, fetchErr := s.ops.Get(ctx, id)
		if fetchErr != nil {
			s.cache.SetError(s.name, key, fetchErr, version)
			return nil, fetchErr
		}
		s.cache.SetSuccess(s.name, key, record, version)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*T), nil
}

// Create issues a single write and, on confirmed success, invalidates every
// cache entry for this resource. No optimistic update is applied, so a
// failure mutates nothing.
func (s *Syncer[T]) Create(ctx context.Context, data any) (*T, error) {
	if s.ops.Create == nil {
		return nil, ErrNotSupported
	}
	record, err := s.ops.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(s.name)
	return record, nil
}

// Update issues a single write; on success the resource's entries are
// invalidated.
func (s *Syncer[T]) Update(ctx context.Context, id string, data any) (*T, error) {
	if s.ops.Update == nil {
		return nil, ErrNotSupported
	}
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	record, err := s.ops.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(s.name)
	return record, nil
}

// Delete soft-deletes a record; on success the resource's entries are
// invalidated.
func (s *Syncer[T]) Delete(ctx context.Context, id string) error {
	if s.ops.Delete == nil {
		return ErrNotSupported
	}
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if err := s.ops.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(s.name)
	return nil
}

// Restore clears a record's soft-delete marker; on success the resource's
// entries are invalidated.
func (s *Syncer[T]) Restore(ctx context.Context, id string) (*T, error) {
	if s.ops.Restore == nil {
		return nil, ErrNotSupported
	}
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	record, err := s.ops.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(s.name)
	return record, nil
}

// fetchList performs the network fetch for a list key. The resource version
// is captured before the request goes out; the cache discards the result if
// a write invalidated the resource while the fetch was in flight.
func (s *Syncer[T]) fetchList(ctx context.Context, key string, filters Filters) ([]T, error) {
	version := s.cache.Version(s.name)
	items, err := s.ops.List(ctx, filters)
	if err != nil {
		s.cache.SetError(s.name, key, err, version)
		return nil, err
	}
	s.cache.SetSuccess(s.name, key, items, version)
	return items, nil
}

// refreshList refetches an aging entry in the background. The caller already
// got the cached payload; an abandoned or failed refresh only logs.
func (s *Syncer[T]) refreshList(key string, filters Filters) {
	async.SafeGo(context.Background(), 30*time.Second, "refresh "+s.name, s.logger, func(ctx context.Context) error {
		_, err, _ := s.group.Do("refresh|"+key, func() (interface{}, error) {
			return s.fetchList(ctx, key, filters)
		})
		return err
	})
}
