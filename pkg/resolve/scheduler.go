// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"

	"github.com/jploot/picomaven/internal/syncx"
	"github.com/jploot/picomaven/pkg/registry"
)

// Resolve is the root driver: it builds the shared Repository Set and
// Task Registry that every Task spawned during this run (root or
// transitive) will read and append to, submits one Task per root
// Dependency, and blocks until the entire descendant tree has joined.
//
// Roots are resolved concurrently against the same Pool their
// transitive children will also run on, the way a root Task's own
// expandTransitive fans its children out: Resolve is simply the
// zero-depth case of that same pattern, seeded with the caller's
// initial repository list instead of one discovered from a parent
// descriptor.
//
// Results are returned in the same order as deps, regardless of
// completion order.
func Resolve(ctx context.Context, root string, repos []string, deps []Dependency, pool *Pool, client registry.Client, processors ...TransitiveProcessor) []*DownloadResult {
	repoSet := syncx.NewOrderedSet(repos...)
	taskRegistry := &syncx.Registry[*DownloadResult]{}

	futures := make([]*Future, len(deps))
	for i, dep := range deps {
		task := &Task{
			Dep:        dep,
			Optional:   dep.Optional,
			Root:       root,
			Repos:      repoSet,
			Registry:   taskRegistry,
			Pool:       pool,
			Client:     client,
			Processors: processors,
		}
		fut := pool.Submit(task.Run)
		futures[i] = fut
		taskRegistry.Add(fut)
	}

	results := make([]*DownloadResult, len(deps))
	for i, fut := range futures {
		results[i], _ = fut.Join()
	}

	// Every root future above has already been joined, and every Task's
	// expandTransitive joins the children it submitted before its Run
	// returns, so by now the entire descendant tree has finished. The
	// registry still holds every future registered during the run (roots
	// included); draining and joining it here, repeating until a pass
	// comes back empty, is a defensive check that nothing registered is
	// left unjoined.
	for {
		pending := taskRegistry.Drain()
		if len(pending) == 0 {
			break
		}
		for _, fut := range pending {
			fut.Join()
		}
	}
	pool.Wait()

	return results
}
