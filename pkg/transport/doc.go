// Package transport implements the shared HTTP client pipeline for the
// Streamweave console.
//
// # Overview
//
// Every backend call goes through a single Pipeline: an http.RoundTripper
// applying an ordered list of request mutators before dispatch and response
// mutators after. The 401 handling lives here, once, so every resource
// syncer and the session machine get session-expiry behavior for free.
//
// # Key Components
//
// Pipeline: ordered request/response mutator chain
//
//	p := transport.NewPipeline(http.DefaultTransport,
//		transport.WithRequestMutators(transport.RequestID(), transport.BearerAuth(store)),
//		transport.WithResponseMutators(transport.SessionExpiry(store, nav, logger, metrics)),
//	)
//	client := &http.Client{Transport: p}
//
// BearerAuth: attaches the stored credential as a bearer header. Reads the
// store immediately before dispatch and never blocks or refreshes; token
// expiry is handled reactively by SessionExpiry.
//
// SessionExpiry: on a 401, clears the credential and forces navigation to
// the login boundary with a return-to parameter. Requests tagged exempt via
// contextkeys.WithAuthExempt bypass it; the login submission itself is
// tagged so a 401 from bad credentials stays a local error.
package transport
