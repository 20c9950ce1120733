package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweave/console/pkg/contextkeys"
	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/tokenstore"
)

type fakeNavigator struct {
	mu       sync.Mutex
	location string
	redirect []string
}

func (n *fakeNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *fakeNavigator) ForceLogin(returnTo string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirect = append(n.redirect, returnTo)
}

func (n *fakeNavigator) redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirect...)
}

func discardLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func newExpiryClient(store tokenstore.Store, nav Navigator) *http.Client {
	pipeline := NewPipeline(nil,
		WithRequestMutators(BearerAuth(store)),
		WithResponseMutators(SessionExpiry(store, nav, discardLogger(), nil)),
	)
	return &http.Client{Transport: pipeline}
}

func TestSessionExpiryClearsStoreAndRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save("tok-1"))
	nav := &fakeNavigator{location: "/instruments?include_deleted=true"}

	resp, err := newExpiryClient(store, nav).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// The 401 still reaches the caller.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = store.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
	assert.Equal(t, []string{"/instruments?include_deleted=true"}, nav.redirects())
}

func TestSessionExpiryFiresOnceForConcurrentFailures(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save("tok-1"))
	nav := &fakeNavigator{location: "/schedules"}
	client := newExpiryClient(store, nav)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(server.URL)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	close(release)
	wg.Wait()

	assert.Len(t, nav.redirects(), 1, "several in-flight 401s must redirect exactly once")
	_, err := store.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestSessionExpiryIgnoresExemptRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save("tok-1"))
	nav := &fakeNavigator{location: "/login"}
	client := newExpiryClient(store, nav)

	req, err := http.NewRequestWithContext(
		contextkeys.WithAuthExempt(context.Background()),
		http.MethodPost, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	// Bad login credentials are the caller's problem, not a session expiry.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Empty(t, nav.redirects())
}

func TestSessionExpiryAnonymousRequestDoesNotRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore()
	nav := &fakeNavigator{location: "/instruments"}

	resp, err := newExpiryClient(store, nav).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, nav.redirects())
}

func TestSessionExpiryNoRedirectLoopAtLoginBoundary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save("tok-1"))
	nav := &fakeNavigator{location: "/login?return_to=%2Finstruments"}

	resp, err := newExpiryClient(store, nav).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// Credential is still cleared, but no navigation fires.
	_, err = store.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
	assert.Empty(t, nav.redirects())
}

func TestSessionExpiryPassesThroughOtherStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"forbidden", http.StatusForbidden},
		{"validation error", http.StatusUnprocessableEntity},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			store := tokenstore.NewMemoryStore()
			require.NoError(t, store.Save("tok-1"))
			nav := &fakeNavigator{location: "/instruments"}

			resp, err := newExpiryClient(store, nav).Get(server.URL)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			token, loadErr := store.Load()
			require.NoError(t, loadErr)
			assert.Equal(t, "tok-1", token)
			assert.Empty(t, nav.redirects())
		})
	}
}
