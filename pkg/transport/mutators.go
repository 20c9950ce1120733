package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/streamweave/console/pkg/tokenstore"
)

// BearerAuth returns a request mutator that reads the token store and, when a
// credential is held, attaches it as a bearer authorization header. The token
// is forwarded verbatim and never inspected. With an empty store the request
// goes out unauthenticated; expiry is handled reactively by SessionExpiry,
// never preemptively here.
func BearerAuth(store tokenstore.Store) RequestMutator {
	return func(req *http.Request) error {
		token, err := store.Load()
		if err != nil {
			if errors.Is(err, tokenstore.ErrNoToken) {
				return nil
			}
			return fmt.Errorf("failed to load credential: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// RequestID returns a request mutator attaching a UUID X-Request-ID header
// when the caller did not set one.
func RequestID() RequestMutator {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.NewString())
		}
		return nil
	}
}
