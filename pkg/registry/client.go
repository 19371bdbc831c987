// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package registry provides the HTTP transport seam that pkg/descriptor
// and pkg/checksum fetch bytes through. It is deliberately thin: the
// core engine (pkg/resolve) never imports net/http directly, only this
// package's Client interface, so tests can substitute a fake.
package registry

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Client.Get when the remote responds 404.
// Callers distinguish it with errors.Is.
var ErrNotFound = errors.New("resource not found")

// Client fetches bytes from a URL. Implementations must translate a 404
// response into ErrNotFound and leave any other non-2xx status, timeout,
// or DNS failure as an opaque error for the caller to classify (see
// pkg/resolve's error taxonomy).
type Client interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// BasicClient is the minimal shape HTTPClient wraps, matching the
// standard *http.Client method it actually uses. Tests may substitute
// any Do-shaped fake.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// HTTPClient is the default Client, backed by a BasicClient.
type HTTPClient struct {
	Client BasicClient
}

// NewHTTPClient returns an HTTPClient using http.DefaultClient.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: http.DefaultClient}
}

var _ Client = &HTTPClient{}

// Get issues a GET request and returns the response body on any 2xx. A 404
// is reported as ErrNotFound; any other non-2xx status is an opaque
// error carrying the status text.
func (c *HTTPClient) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "performing request")
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status: %s", resp.Status)
	}
	return resp.Body, nil
}
