package transport

import (
	"net/http"
	"strings"
	"sync"

	"github.com/streamweave/console/pkg/contextkeys"
	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/tokenstore"
)

// LoginPath is the login boundary of the console.
const LoginPath = "/login"

// Navigator abstracts the view layer's location handling. The transport uses
// it to force the application back to the login boundary when the session
// expires.
type Navigator interface {
	// Location returns the current path and query string.
	Location() string

	// ForceLogin navigates to the login boundary. returnTo is the location
	// to restore after re-authentication.
	ForceLogin(returnTo string)
}

// FuncNavigator adapts plain functions to the Navigator interface.
type FuncNavigator struct {
	LocationFunc   func() string
	ForceLoginFunc func(returnTo string)
}

func (n FuncNavigator) Location() string {
	if n.LocationFunc == nil {
		return ""
	}
	return n.LocationFunc()
}

func (n FuncNavigator) ForceLogin(returnTo string) {
	if n.ForceLoginFunc != nil {
		n.ForceLoginFunc(returnTo)
	}
}

// SessionExpiry returns the response mutator implementing the global 401
// contract: clear the credential, then force one navigation to the login
// boundary carrying the current location as return-to. The response itself
// still reaches the caller, so call sites can tell their own 401 apart from
// a propagated transport error.
//
// Exactly-once behavior with several authenticated fetches in flight: the
// store is the dedup state. The first 401 observes a held credential, clears
// it and redirects; later 401s observe the empty slot and do nothing. A 401
// on a request tagged with contextkeys.WithAuthExempt (the login submission)
// never triggers expiry, because no session existed to expire. No redirect
// fires when the application is already at the login boundary.
func SessionExpiry(store tokenstore.Store, nav Navigator, logger *observability.Logger, metrics *observability.Metrics) ResponseMutator {
	var mu sync.Mutex

	return func(resp *http.Response) {
		if resp.StatusCode != http.StatusUnauthorized {
			return
		}
		if resp.Request != nil && contextkeys.IsAuthExempt(resp.Request.Context()) {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		// Anonymous 401, or a concurrent 401 already handled it.
		if _, err := store.Load(); err != nil {
			return
		}

		if err := store.Clear(); err != nil {
			logger.WithError(err).Error("failed to clear credential after 401")
		}
		if metrics != nil {
			metrics.SessionExpiriesTotal.Inc()
		}

		location := nav.Location()
		if atLoginBoundary(location) {
			return
		}
		logger.WithField("return_to", location).Info("session expired, redirecting to login")
		nav.ForceLogin(location)
	}
}

// atLoginBoundary reports whether location is the login boundary, with or
// without a query string. Redirecting from there would loop.
func atLoginBoundary(location string) bool {
	return location == LoginPath || strings.HasPrefix(location, LoginPath+"?")
}
