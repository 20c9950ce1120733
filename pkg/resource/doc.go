// Package resource implements the generic synchronization layer every CRUD
// screen of the console is built on.
//
// # Overview
//
// One Syncer per backend resource type wraps a read query and the write
// mutations against a shared client-side Cache. Entries are keyed by
// (resource name, request parameters); distinct filter values map to
// distinct keys, so two differently filtered lists never clobber each other.
// Every confirmed write invalidates all entries for its resource name, and
// only those: writing an instrument never touches the schedules cache.
//
// # Staleness and races
//
// The cache is versioned per resource name. A fetch captures the version
// before it is issued; a write bumps the version; a fetch response arriving
// with an outdated version is discarded instead of stomping fresher data.
// Entries expire from the backing LRU after the configured TTL; a hit past
// the refresh age is served immediately and refreshed in the background.
//
// # Usage
//
//	syncer := resource.NewSyncer[Instrument]("instruments", cache, ops, logger)
//	items, err := syncer.List(ctx, resource.Filters{})
//	one, err := syncer.Get(ctx, id)
//	_, err = syncer.Create(ctx, payload) // invalidates "instruments" entries
package resource
