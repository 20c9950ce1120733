// Package httputil provides HTTP client utilities for consistent request
// building, JSON encoding/decoding and response draining.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// JoinURL joins a base URL and a path, normalizing slashes.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// WithQuery appends encoded query parameters to a URL. Parameters are encoded
// in sorted key order, so the same values always produce the same URL.
func WithQuery(rawURL string, query url.Values) string {
	if len(query) == 0 {
		return rawURL
	}
	return rawURL + "?" + query.Encode()
}

// NewJSONRequest creates a request with a JSON-encoded body.
func NewJSONRequest(ctx context.Context, method, rawURL string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// NewFormRequest creates a POST request with a form-encoded body.
func NewFormRequest(ctx context.Context, rawURL string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
