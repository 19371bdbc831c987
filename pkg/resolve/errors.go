// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"github.com/jploot/picomaven/pkg/checksum"
	"github.com/jploot/picomaven/pkg/descriptor"
)

// ConnectivityError and ParseError are defined in pkg/descriptor (Task
// also builds ConnectivityError for failed descriptor and artifact
// fetches); they're aliased here so callers of pkg/resolve can
// classify a DownloadResult's Err without importing those packages
// directly.
type ConnectivityError = descriptor.ConnectivityError
type ParseError = descriptor.ParseError

// NotFoundError means a repository responded 404 for a requested URL.
// Non-fatal at the per-repository loop: it either triggers the
// metadata-driven fallback (direct probe) or advances to the next
// repository (metadata probe).
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string { return "not found: " + e.URL }

// IntegrityError means a downloaded artifact's bytes did not match an
// expected (declared or remote-fetched) checksum. Fatal to the task.
type IntegrityError struct {
	Algo     checksum.Algo
	Expected string
	Got      string
}

func (e *IntegrityError) Error() string {
	return "checksum mismatch (" + string(e.Algo) + "): expected " + e.Expected + ", got " + e.Got
}

// IoError wraps a local filesystem failure. Fatal to the task.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *IoError) Unwrap() error { return e.Err }

// ExhaustedError means every candidate repository was tried and none
// produced a successful artifact. Fatal to the task.
type ExhaustedError struct {
	Coordinate string
}

func (e *ExhaustedError) Error() string {
	return "exhausted all repositories for " + e.Coordinate
}
