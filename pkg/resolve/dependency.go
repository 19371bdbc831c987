// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package resolve implements the concurrent resolver/downloader engine:
// repository probing, transitive expansion with dynamically-discovered
// repositories, fan-out scheduling of child downloads, checksum
// verification, and atomic installation into a local directory tree.
package resolve

import (
	"github.com/jploot/picomaven/pkg/checksum"
	"github.com/jploot/picomaven/pkg/coordinate"
)

// Checksum is a declared (expected) digest a Dependency is known to
// need verified, supplied by the caller for root coordinates.
type Checksum struct {
	Algo   checksum.Algo
	Digest string
}

// Dependency is one unit of work: a coordinate to resolve, whether its
// transitive graph should be expanded, and any checksums the caller
// already knows to hold it to. Immutable after construction.
//
// Optional carries the caller's own intent for a root Dependency (a
// transitive child's Optional is instead derived from its declaring
// descriptor; see TransitiveView). Resolve never swallows a root's own
// failure regardless of Optional — only a parent Task swallows an
// optional child's failure — so for roots this only annotates the
// returned DownloadResult for the caller to act on.
type Dependency struct {
	Coordinate coordinate.Coordinate
	Transitive bool
	Optional   bool
	Checksums  []Checksum
}

// DownloadResult is the immutable, per-artifact outcome returned by a
// Task: success or failure, plus the outcomes of its transitive
// children (submission order, not completion order).
type DownloadResult struct {
	Dependency Dependency
	LocalPath  string
	Optional   bool
	Success    bool
	Err        error
	Transitive []*DownloadResult
}

// TransitiveView is the mutable value threaded through the
// transitive-dependency processor chain during expansion of one
// declared dependency. A processor may substitute versions or toggle
// Allowed; if the chain leaves Allowed false, the dependency is
// skipped.
type TransitiveView struct {
	Parent     coordinate.Coordinate
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Scope      string
	Optional   bool
	Allowed    bool
}

// TransitiveProcessor mutates a TransitiveView in place. Processors are
// applied in registration order; none of them return an error, matching
// the narrow "in/out object" shape spec'd for this extension point —
// extend by adding processors, not by subclassing a Task.
type TransitiveProcessor func(*TransitiveView)
