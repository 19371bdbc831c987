// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package hashext

import "crypto"

// MultiHash fans a single Write out to several TypedHash instances so a
// byte buffer only needs to be walked once to produce digests under every
// algorithm a caller is interested in.
type MultiHash []TypedHash

// NewMultiHash constructs a MultiHash over the given algorithms.
func NewMultiHash(algos ...crypto.Hash) MultiHash {
	var mh MultiHash
	for _, algo := range algos {
		mh = append(mh, NewTypedHash(algo))
	}
	return mh
}

// Write feeds p to every contained hash.
func (m MultiHash) Write(p []byte) (int, error) {
	for _, th := range m {
		if _, err := th.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Sums returns the hex-encoded digest for each contained algorithm, keyed
// by crypto.Hash.
func (m MultiHash) Sums() map[crypto.Hash]string {
	out := make(map[crypto.Hash]string, len(m))
	for _, th := range m {
		out[th.Algorithm] = hexSum(th)
	}
	return out
}

// Reset resets every contained hash.
func (m MultiHash) Reset() {
	for _, th := range m {
		th.Reset()
	}
}
