// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jploot/picomaven/internal/atomicfile"
	"github.com/jploot/picomaven/internal/syncx"
	"github.com/jploot/picomaven/pkg/checksum"
	"github.com/jploot/picomaven/pkg/coordinate"
	"github.com/jploot/picomaven/pkg/descriptor"
	"github.com/jploot/picomaven/pkg/registry"
	"github.com/pkg/errors"
)

// Task resolves one Dependency: it probes repositories, downloads and
// verifies the artifact, persists it, and expands transitive children.
// A Task is created once per (coordinate, parent) and never reused.
type Task struct {
	Dep      Dependency
	Optional bool

	Root       string // download root directory
	Repos      *syncx.OrderedSet[string]
	Registry   *syncx.Registry[*DownloadResult]
	Pool       *Pool
	Client     registry.Client
	Processors []TransitiveProcessor
}

// Run executes the resolution algorithm for this task. No error ever
// escapes: every failure is encoded in the returned DownloadResult.
//
// Run acquires its Pool slot as its first action and releases it as its
// last: a task occupies a slot for the duration of its own work, but
// (see expandTransitive) frees it while blocked waiting on children so
// that a transitive chain deeper than the Pool's size cannot deadlock.
func (t *Task) Run(ctx context.Context) *DownloadResult {
	t.Pool.Acquire()
	defer t.Pool.Release()

	artPath := coordinate.LocalPath(t.Root, t.Dep.Coordinate, "jar")
	pomPath := coordinate.LocalPath(t.Root, t.Dep.Coordinate, "pom")

	if fileExists(artPath) {
		var transitive []*DownloadResult
		if t.Dep.Transitive && fileExists(pomPath) {
			if raw, err := os.ReadFile(pomPath); err == nil {
				if desc, err := descriptor.ParseDescriptor(raw); err == nil {
					transitive = t.expandTransitive(ctx, desc)
				}
			}
		}
		return t.success(artPath, transitive)
	}

	for _, repo := range t.Repos.Snapshot() {
		if !t.Dep.Coordinate.IsSnapshot() {
			result := t.download(ctx, repo,
				coordinate.DirectURL(repo, t.Dep.Coordinate, "pom"),
				coordinate.DirectURL(repo, t.Dep.Coordinate, "jar"),
				artPath)
			if result.Success {
				return result
			}
			if isConnectivity(result.Err) {
				continue // try next repository
			}
			var integrityErr *IntegrityError
			var ioErr *IoError
			if errors.As(result.Err, &integrityErr) || errors.As(result.Err, &ioErr) {
				return result // checksum mismatch or I/O failure: fatal to the task
			}
			// Any other failure (notably a 404 on the direct JAR URL)
			// falls through to metadata-driven resolution within the
			// same repository.
		}

		// groupMeta is consulted only as an existence gate here (a 404
		// or parse error skips this repository); its content isn't read
		// to pick a resolved version. Deviation from spec.md §4.1's
		// literal wording that ArtifactMetaURL's resolved_version "comes
		// from the group metadata": the coordinate's own version is used
		// instead, which is the same value spec.md's own worked
		// snapshot example (§8 scenario 4) resolves against.
		groupMeta, err := descriptor.GetGroupMetadata(ctx, t.Client, coordinate.GroupMetaURL(repo, t.Dep.Coordinate))
		if err != nil || groupMeta == nil {
			continue // absent, connectivity, or parse error: try next repository
		}

		artMeta, err := descriptor.GetArtifactMetadata(ctx, t.Client, coordinate.ArtifactMetaURL(repo, t.Dep.Coordinate, t.Dep.Coordinate.Version))
		if err != nil || artMeta == nil {
			continue
		}

		snapshotVersion := artMeta.ResolvedVersion()
		pomURL := coordinate.ArtifactURL(repo, t.Dep.Coordinate, snapshotVersion, "pom")
		jarURL := coordinate.ArtifactURL(repo, t.Dep.Coordinate, snapshotVersion, "jar")
		// This repository produced a coherent artifact URL: its result
		// is final, success or failure, with no further repositories
		// tried.
		return t.download(ctx, repo, pomURL, jarURL, artPath)
	}

	return t.failure(&ExhaustedError{Coordinate: t.Dep.Coordinate.String()})
}

// download fetches (and, if transitive, persists and expands) the
// descriptor, then fetches, verifies, and atomically installs the
// artifact itself.
func (t *Task) download(ctx context.Context, repo, pomURL, jarURL, artPath string) *DownloadResult {
	var transitive []*DownloadResult
	if t.Dep.Transitive {
		raw, err := t.Client.Get(ctx, pomURL)
		switch {
		case err == nil:
			data, rerr := io.ReadAll(raw)
			raw.Close()
			if rerr != nil {
				return t.failure(&IoError{Op: "reading descriptor", Err: rerr})
			}
			pomPath := coordinate.LocalPath(t.Root, t.Dep.Coordinate, "pom")
			if werr := atomicfile.WriteReplace(pomPath, data); werr != nil {
				return t.failure(&IoError{Op: "writing descriptor", Err: werr})
			}
			if desc, perr := descriptor.ParseDescriptor(data); perr == nil {
				transitive = t.expandTransitive(ctx, desc)
			} else {
				log.Printf("skipping transitive expansion of %s: %v", t.Dep.Coordinate, perr)
			}
			// A parse error on the transitive descriptor is logged and
			// non-fatal: the artifact is still downloadable, just
			// without its own transitive expansion.
		case errors.Is(err, registry.ErrNotFound):
			// descriptor absent: proceed without children.
		default:
			return t.failure(&ConnectivityError{URL: pomURL, Err: err})
		}
	}

	jarBody, err := t.Client.Get(ctx, jarURL)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			r := t.failure(&NotFoundError{URL: jarURL})
			r.Transitive = transitive
			return r
		}
		r := t.failure(&ConnectivityError{URL: jarURL, Err: err})
		r.Transitive = transitive
		return r
	}
	data, err := io.ReadAll(jarBody)
	jarBody.Close()
	if err != nil {
		r := t.failure(&IoError{Op: "reading artifact", Err: err})
		r.Transitive = transitive
		return r
	}

	if err := t.verify(ctx, jarURL, data); err != nil {
		r := t.failure(err)
		r.Transitive = transitive
		return r
	}

	if err := atomicfile.WriteReplace(artPath, data); err != nil {
		r := t.failure(&IoError{Op: "writing artifact", Err: err})
		r.Transitive = transitive
		return r
	}

	return t.success(artPath, transitive)
}

// verify runs the Checksum Verification pipeline: declared checksums
// (if any) must all match; otherwise remote sidecars are probed and the
// artifact is accepted unless a fetched digest actively mismatches.
// Every candidate algorithm's digest is computed once, up front, via
// checksum.ComputeAll, rather than re-hashing the buffer per algorithm.
func (t *Task) verify(ctx context.Context, jarURL string, data []byte) error {
	computed, err := checksum.ComputeAll(data)
	if err != nil {
		return &IoError{Op: "computing checksum", Err: err}
	}

	if len(t.Dep.Checksums) > 0 {
		for _, c := range t.Dep.Checksums {
			got, ok := computed[c.Algo]
			if !ok {
				return &IoError{Op: "computing checksum", Err: errors.Errorf("unsupported checksum algorithm: %s", c.Algo)}
			}
			if !checksum.EqualFold(got, c.Digest) {
				return &IntegrityError{Algo: c.Algo, Expected: c.Digest, Got: got}
			}
		}
		return nil
	}

	// Sidecar fetches are independent network calls, so they run
	// concurrently; results are then walked in RemoteAlgos order so a
	// mismatch is always reported against the same algorithm regardless
	// of which fetch happened to land first.
	type sidecar struct {
		digest string
		absent bool
		err    error
	}
	results := make([]sidecar, len(checksum.RemoteAlgos))
	var wg sync.WaitGroup
	for i, algo := range checksum.RemoteAlgos {
		wg.Add(1)
		go func(i int, algo checksum.Algo) {
			defer wg.Done()
			digest, absent, err := checksum.FetchRemote(ctx, t.Client, jarURL, algo)
			results[i] = sidecar{digest: digest, absent: absent, err: err}
		}(i, algo)
	}
	wg.Wait()

	for i, algo := range checksum.RemoteAlgos {
		r := results[i]
		if r.err != nil || r.absent {
			continue
		}
		if !checksum.EqualFold(computed[algo], r.digest) {
			return &IntegrityError{Algo: algo, Expected: r.digest, Got: computed[algo]}
		}
	}
	// If no sidecar was available under any configured algorithm, the
	// artifact is accepted unverified.
	return nil
}

// expandTransitive parses the declared repositories and dependencies of
// a descriptor, submits a child Task per surviving dependency, and
// blocks until every directly-submitted child has joined.
func (t *Task) expandTransitive(ctx context.Context, desc *descriptor.Descriptor) []*DownloadResult {
	for _, raw := range desc.Repositories {
		url := strings.TrimSpace(raw)
		if url == "" || !looksLikeURL(url) {
			log.Printf("skipping malformed repository URL %q declared by %s", raw, t.Dep.Coordinate)
			continue // malformed: logged and skipped, never fatal
		}
		t.Repos.Add(url)
	}

	// The descriptor being expanded belongs to this task's own
	// coordinate: it is the "parent" that ${project.*} tokens in its
	// declared dependencies resolve against.
	parent := t.Dep.Coordinate

	var futures []*Future
	for _, dd := range desc.Dependencies {
		view := &TransitiveView{
			Parent:     t.Dep.Coordinate,
			Group:      dd.Group,
			Artifact:   dd.Artifact,
			Version:    dd.Version,
			Classifier: dd.Classifier,
			Scope:      dd.EffectiveScope(),
			Optional:   dd.Optional,
			Allowed:    true,
		}
		for _, proc := range t.Processors {
			proc(view)
		}
		if !view.Allowed {
			continue
		}
		if !descriptor.RelevantScopes[view.Scope] {
			continue
		}
		view.Group = substituteProjectProperties(view.Group, parent)
		view.Version = substituteProjectProperties(view.Version, parent)
		if view.Group == "" || view.Artifact == "" || view.Version == "" {
			log.Printf("skipping incomplete dependency %q:%q:%q declared by %s", view.Group, view.Artifact, view.Version, parent)
			continue // incomplete after substitution: logged and skipped
		}

		child := &Task{
			Dep: Dependency{
				Coordinate: coordinate.Coordinate{
					Group:      view.Group,
					Artifact:   view.Artifact,
					Version:    view.Version,
					Classifier: view.Classifier,
				},
				Transitive: true,
			},
			Optional:   view.Optional,
			Root:       t.Root,
			Repos:      t.Repos,
			Registry:   t.Registry,
			Pool:       t.Pool,
			Client:     t.Client,
			Processors: t.Processors,
		}
		future := t.Pool.Submit(child.Run)
		futures = append(futures, future)
		t.Registry.Add(future)
	}

	// Free this task's own worker slot for the duration of the join:
	// children (and their own descendants) are submitted to the same
	// Pool, so a task that stayed parked on its slot while blocked here
	// would starve them out on a sufficiently deep transitive chain.
	t.Pool.Release()
	defer t.Pool.Acquire()

	var results []*DownloadResult
	for _, f := range futures {
		result, _ := f.Join()
		if !result.Success && result.Optional {
			continue // optional failures are swallowed
		}
		results = append(results, result)
	}
	return results
}

func (t *Task) success(localPath string, transitive []*DownloadResult) *DownloadResult {
	return &DownloadResult{Dependency: t.Dep, LocalPath: localPath, Optional: t.Optional, Success: true, Transitive: transitive}
}

func (t *Task) failure(err error) *DownloadResult {
	return &DownloadResult{Dependency: t.Dep, Optional: t.Optional, Success: false, Err: err}
}

func isConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "://")
}

// substituteProjectProperties performs the narrow two-token substitution
// the engine supports: "${project.groupId}" and "${project.version}"
// against the immediate parent coordinate. It is deliberately not
// general property interpolation.
func substituteProjectProperties(s string, parent coordinate.Coordinate) string {
	r := strings.NewReplacer(
		"${project.groupId}", parent.Group,
		"${project.version}", parent.Version,
	)
	return r.Replace(s)
}
