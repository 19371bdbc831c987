// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package hashext provides extensions to the standard crypto/hash package.
package hashext

import (
	"crypto"
	"hash"
)

// TypedHash is a hash.Hash annotated with the algorithm it computes.
type TypedHash struct {
	hash.Hash
	Algorithm crypto.Hash
}

// NewTypedHash constructs a new TypedHash. The algorithm's implementation
// must already be registered (e.g. via a blank crypto/* import).
func NewTypedHash(algo crypto.Hash) TypedHash {
	return TypedHash{Hash: algo.New(), Algorithm: algo}
}
