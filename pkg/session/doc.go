// Package session owns the client-side answer to "who is the current user".
//
// # Overview
//
// The Machine is a three-state tagged union: Initializing until the first
// Bootstrap resolves, then Unauthenticated or Authenticated with a resolved
// Identity. Identity is always a fresh derivation from the backend; it is
// never persisted across a process restart. Only the bearer credential
// persists, in the token store.
//
// # State transitions
//
//	Initializing -> {Authenticated, Unauthenticated}   (Bootstrap, exactly once)
//	Unauthenticated -> Authenticated                   (Login)
//	Authenticated -> Unauthenticated                   (Logout, expiry, Resync)
//
// A stale or revoked credential is expected, not exceptional: identity
// resolution failure always settles to Unauthenticated with the credential
// cleared. The machine never retries and never crashes on it.
package session
