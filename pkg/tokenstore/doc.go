// Package tokenstore persists the single bearer credential for the console.
//
// # Overview
//
// The store holds at most one opaque token. Absence of a token means "no
// session"; it is reported as ErrNoToken, never as an empty string. The
// credential is written on login, deleted on logout and on any authorization
// failure, and read by the transport immediately before each request. No
// component other than the transport ever forwards the token anywhere.
//
// # Key Components
//
// FileStore: credential persisted across processes at a fixed path
//
//	store, err := tokenstore.NewFileStore(tokenstore.DefaultPath())
//	token, err := store.Load()
//
// MemoryStore: isolated per-test store
//
// Watcher: fsnotify-based observation of the token file so a long-running
// console notices an external login or logout
package tokenstore
