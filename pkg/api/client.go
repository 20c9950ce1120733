package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/streamweave/console/pkg/contextkeys"
	"github.com/streamweave/console/pkg/httputil"
	"github.com/streamweave/console/pkg/observability"
	"github.com/streamweave/console/pkg/session"
)

// DefaultTimeout bounds a single backend request when no custom http.Client
// is supplied.
const DefaultTimeout = 30 * time.Second

// Client issues requests against one Streamweave backend. Credential
// attachment, request IDs and 401 handling live in the transport.Pipeline of
// the injected http.Client, not here; the client only builds requests and
// decodes responses.
//
// Client implements session.AuthAPI.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *observability.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the http.Client used for all requests. Its transport
// should be a transport.Pipeline so the session middleware applies.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(logger *observability.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a bearer token. The backend takes the
// fastapi-users form shape (username/password). The request is tagged
// auth-exempt: a 401 here means bad credentials and must stay a local error,
// not a session expiry.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	ctx = contextkeys.WithAuthExempt(ctx)

	form := url.Values{
		"username": {email},
		"password": {password},
	}
	req, err := httputil.NewFormRequest(ctx, httputil.JoinURL(c.baseURL, "/auth/jwt/login"), form)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", newAPIError(resp)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := httputil.DecodeJSON(resp, &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("login response carried no access token")
	}
	return token.AccessToken, nil
}

// Logout invalidates the server-side session for the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/jwt/logout", nil, nil, nil)
}

// CurrentUser resolves the identity behind the current credential.
func (c *Client) CurrentUser(ctx context.Context) (*session.Identity, error) {
	var ident session.Identity
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// do issues one JSON request. A nil out discards the response body; a non-2xx
// status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	rawURL := httputil.WithQuery(httputil.JoinURL(c.baseURL, path), query)
	req, err := httputil.NewJSONRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}
	if out == nil {
		httputil.DrainAndClose(resp.Body)
		return nil
	}
	return httputil.DecodeJSON(resp, out)
}
