package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/tokenstore"
)

func TestPipelineAppliesRequestMutatorsInOrder(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Order"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	first := func(req *http.Request) error {
		req.Header.Set("X-Order", "first")
		return nil
	}
	second := func(req *http.Request) error {
		req.Header.Set("X-Order", req.Header.Get("X-Order")+",second")
		return nil
	}

	client := &http.Client{Transport: NewPipeline(nil, WithRequestMutators(first, second))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"first,second"}, seen)
}

func TestPipelineDoesNotMutateCallerRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mutator := func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer tok")
		return nil
	}

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	client := &http.Client{Transport: NewPipeline(nil, WithRequestMutators(mutator))}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestPipelineAppliesResponseMutators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	var observed int
	observe := func(resp *http.Response) {
		observed = resp.StatusCode
	}

	client := &http.Client{Transport: NewPipeline(nil, WithResponseMutators(observe))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusTeapot, observed)
	// The response still reaches the caller unchanged.
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestPipelineRecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := observability.NewMetrics(prometheus.NewRegistry())
	client := &http.Client{Transport: NewPipeline(nil, WithMetrics(m))}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "200")))
}

func TestBearerAuthAttachesStoredToken(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save("tok-1"))

	client := &http.Client{Transport: NewPipeline(nil, WithRequestMutators(BearerAuth(store)))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok-1", header)
}

func TestBearerAuthSkipsEmptyStore(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewPipeline(nil, WithRequestMutators(BearerAuth(tokenstore.NewMemoryStore())))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, header)
}

func TestRequestIDMutator(t *testing.T) {
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewPipeline(nil, WithRequestMutators(RequestID()))}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}
