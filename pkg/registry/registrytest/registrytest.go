// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package registrytest provides an in-memory fake of registry.Client for
// exercising pkg/descriptor, pkg/checksum, and pkg/resolve without real
// network I/O.
package registrytest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/jploot/picomaven/pkg/registry"
)

// FakeClient serves fixed responses keyed by URL. A URL with no entry is
// treated as a 404. A URL mapped to a non-nil error returns that error
// verbatim (e.g. to simulate a connectivity failure).
type FakeClient struct {
	mu    sync.Mutex
	files map[string][]byte
	errs  map[string]error
	calls []string
}

// NewFakeClient constructs an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{files: make(map[string][]byte), errs: make(map[string]error)}
}

// Serve registers body as the 200 response for url.
func (f *FakeClient) Serve(url string, body []byte) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[url] = body
	return f
}

// ServeString is a convenience wrapper around Serve for text bodies.
func (f *FakeClient) ServeString(url, body string) *FakeClient {
	return f.Serve(url, []byte(body))
}

// FailWith registers err as the error returned for url, overriding any
// Serve'd body. Use registry.ErrNotFound to simulate a 404 and any other
// error to simulate a connectivity failure.
func (f *FakeClient) FailWith(url string, err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
	return f
}

// Calls returns every URL that was requested, in request order,
// including repeats — useful for asserting a cache short-circuit
// avoided a GET.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Get implements registry.Client.
func (f *FakeClient) Get(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	err, failed := f.errs[url]
	body, served := f.files[url]
	f.mu.Unlock()
	if failed {
		return nil, err
	}
	if !served {
		return nil, registry.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

var _ registry.Client = &FakeClient{}
