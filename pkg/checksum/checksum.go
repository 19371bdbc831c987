// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package checksum computes and verifies artifact digests, and fetches
// the sidecar checksum files Maven repositories publish alongside an
// artifact.
package checksum

import (
	"context"
	"crypto"
	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"io"
	"strings"

	"github.com/jploot/picomaven/internal/hashext"
	"github.com/jploot/picomaven/pkg/registry"
	"github.com/pkg/errors"
)

// Algo identifies a checksum algorithm by its Maven sidecar extension.
type Algo string

const (
	MD5    Algo = "md5"
	SHA1   Algo = "sha1"
	SHA256 Algo = "sha256"
	SHA512 Algo = "sha512"
)

// RemoteAlgos is the order remote sidecar checksums are probed in,
// strongest first.
var RemoteAlgos = []Algo{SHA512, SHA256, SHA1, MD5}

var cryptoHash = map[Algo]crypto.Hash{
	MD5:    crypto.MD5,
	SHA1:   crypto.SHA1,
	SHA256: crypto.SHA256,
	SHA512: crypto.SHA512,
}

var algoName = map[crypto.Hash]Algo{
	crypto.MD5:    MD5,
	crypto.SHA1:   SHA1,
	crypto.SHA256: SHA256,
	crypto.SHA512: SHA512,
}

// Compute returns the lowercase hex digest of data under algo.
func Compute(algo Algo, data []byte) (string, error) {
	ch, ok := cryptoHash[algo]
	if !ok {
		return "", errors.Errorf("unsupported checksum algorithm: %s", algo)
	}
	h := hashext.NewTypedHash(ch)
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeAll hashes data once through every algorithm in RemoteAlgos,
// returning every digest from the single pass. Verifying a downloaded
// artifact against several candidate sidecars is the common case (see
// Task.verify), and walking the buffer once via hashext.MultiHash
// instead of once per algorithm matters for multi-megabyte jars.
func ComputeAll(data []byte) (map[Algo]string, error) {
	mh := hashext.NewMultiHash(crypto.MD5, crypto.SHA1, crypto.SHA256, crypto.SHA512)
	if _, err := mh.Write(data); err != nil {
		return nil, err
	}
	out := make(map[Algo]string, len(mh))
	for ch, digest := range mh.Sums() {
		out[algoName[ch]] = digest
	}
	return out, nil
}

// Verify reports whether data hashes to expected under algo. The
// comparison is case-insensitive and tolerant of surrounding whitespace,
// matching how sidecar files are commonly formatted.
func Verify(algo Algo, expected string, data []byte) (bool, error) {
	got, err := Compute(algo, data)
	if err != nil {
		return false, err
	}
	return EqualFold(got, expected), nil
}

// EqualFold reports whether got (a lowercase hex digest this package
// produced) matches expected, tolerating the surrounding whitespace and
// case variation a hand-published sidecar file commonly has.
func EqualFold(got, expected string) bool {
	return strings.EqualFold(got, normalize(expected))
}

func normalize(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// FetchRemote fetches the "<artifactURL>.<algo>" sidecar file and
// returns its digest. absent reports a 404 (no sidecar published); err
// reports any other failure.
func FetchRemote(ctx context.Context, client registry.Client, artifactURL string, algo Algo) (digest string, absent bool, err error) {
	body, err := client.Get(ctx, artifactURL+"."+string(algo))
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return "", true, nil
		}
		return "", false, err
	}
	defer body.Close()
	buf, err := io.ReadAll(body)
	if err != nil {
		return "", false, errors.Wrap(err, "reading checksum sidecar")
	}
	if len(strings.Fields(string(buf))) == 0 {
		return "", false, errors.New("empty checksum sidecar")
	}
	return normalize(string(buf)), false, nil
}
