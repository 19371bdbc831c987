// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"net/http"
	"time"
)

// WithUserAgent is a BasicClient decorator that sets a User-Agent header
// on every outgoing request before delegating.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do sets the User-Agent header and delegates to the wrapped client.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// RateLimitedClient is a BasicClient decorator that spaces out requests
// according to a ticker, so a resolve run doesn't hammer a repository
// while probing across many coordinates.
type RateLimitedClient struct {
	BasicClient
	Ticker *time.Ticker
}

var _ BasicClient = &RateLimitedClient{}

// Do waits for the next tick, then delegates to the wrapped client.
func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	<-c.Ticker.C
	return c.BasicClient.Do(req)
}
