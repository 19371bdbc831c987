// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package descriptor parses Maven group metadata, artifact metadata,
// and project descriptors (pom.xml) fetched through a registry.Client.
// It never imports net/http: that seam belongs to pkg/registry.
package descriptor

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/jploot/picomaven/pkg/registry"
	"github.com/pkg/errors"
)

// ParseError wraps a malformed-XML failure with the URL it came from.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string { return "parsing " + e.URL + ": " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ConnectivityError wraps a non-404 transport failure (timeout, DNS
// failure, connection refused) with the URL it came from.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string { return "fetching " + e.URL + ": " + e.Err.Error() }
func (e *ConnectivityError) Unwrap() error { return e.Err }

// fetchXML performs the Get-decode-classify dance shared by all three
// descriptor fetches: absent (404) returns (nil, nil); a
// connectivity failure returns *ConnectivityError; malformed XML returns
// *ParseError.
func fetchXML[T any](ctx context.Context, client registry.Client, url string) (*T, error) {
	body, err := client.Get(ctx, url)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, nil
		}
		return nil, &ConnectivityError{URL: url, Err: err}
	}
	defer body.Close()
	var v T
	if err := xml.NewDecoder(body).Decode(&v); err != nil && err != io.EOF {
		return nil, &ParseError{URL: url, Err: err}
	}
	return &v, nil
}

// GetGroupMetadata fetches and parses an artifact-level
// maven-metadata.xml. A 404 yields (nil, nil).
func GetGroupMetadata(ctx context.Context, client registry.Client, url string) (*GroupMetadata, error) {
	return fetchXML[GroupMetadata](ctx, client, url)
}

// GetArtifactMetadata fetches and parses a version-level
// maven-metadata.xml (used for snapshot resolution). A 404 yields (nil, nil).
func GetArtifactMetadata(ctx context.Context, client registry.Client, url string) (*ArtifactMetadata, error) {
	return fetchXML[ArtifactMetadata](ctx, client, url)
}

// GetDescriptor fetches and parses a pom.xml. A 404 yields (nil, nil).
func GetDescriptor(ctx context.Context, client registry.Client, url string) (*Descriptor, error) {
	return fetchXML[Descriptor](ctx, client, url)
}

// ParseDescriptor decodes an already-fetched pom.xml, for callers (such
// as a cache hit against a locally persisted descriptor) that hold the
// bytes without having gone through GetDescriptor.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, &ParseError{URL: "", Err: err}
	}
	return &d, nil
}
