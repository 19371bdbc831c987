// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many Dependency Tasks are actively doing work
// (probing, downloading, verifying) at once, without bounding how many
// are merely blocked waiting on their own children. Submit spawns an
// unconditional goroutine per task; concurrency is capped by a weighted
// semaphore that Task.Run itself acquires before doing any work and
// releases when done — the "async runtime" option spec.md §9 names as
// an alternative to a fixed-size worker pool that blocks its callers.
//
// A task's own expandTransitive releases its held slot (via
// Pool.Release) before blocking on its children's Futures and
// reacquires one (via Pool.Acquire) once they've all joined, so the
// slot is free for a child — or a grandchild, arbitrarily deep — to run
// in while the parent is merely waiting. This holds for a Pool of any
// size ≥ 1: a transitive chain deeper than the pool's size no longer
// deadlocks, so the earlier "size ≥ 2" rule this type's doc comment
// used to state no longer applies (that rule only covered single-level
// transitivity; a plain fixed-size worker pool that blocks Submit's
// caller deadlocks on any chain deeper than its size, which real Maven
// graphs routinely exceed).
type Pool struct {
	ctx context.Context
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool constructs a Pool admitting up to size concurrently-running
// tasks.
func NewPool(ctx context.Context, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{ctx: ctx, sem: semaphore.NewWeighted(int64(size))}
}

// Acquire blocks until a worker slot is available. Task.Run acquires
// one as its first action and releases it as its last; it also
// releases and reacquires its own around a blocking join of its
// children (see expandTransitive).
func (p *Pool) Acquire() {
	p.sem.Acquire(p.ctx, 1)
}

// Release frees a slot previously obtained via Acquire.
func (p *Pool) Release() {
	p.sem.Release(1)
}

// Future is a handle to a DownloadResult produced by a Submit call.
type Future struct {
	done   chan struct{}
	result *DownloadResult
}

// Join blocks until the submitted task completes and returns its
// result. It may be called more than once (Resolve joins each root
// future directly and again when draining the registry); every call
// returns the same result. The error return is always nil
// because a Task never lets an error escape — failures are always
// encoded in the DownloadResult itself.
func (f *Future) Join() (*DownloadResult, error) {
	<-f.done
	return f.result, nil
}

// Submit spawns a goroutine for fn and returns immediately. fn (in
// practice, a Task's Run method) is responsible for acquiring its own
// slot; Submit itself never blocks its caller. The returned Future is
// joined separately.
func (p *Pool) Submit(fn func(ctx context.Context) *DownloadResult) *Future {
	fut := &Future{done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(fut.done)
		fut.result = fn(p.ctx)
	}()
	return fut
}

// Wait blocks until every task submitted to the pool has returned. It
// is called once by the root driver as a final defensive join, after
// every Future it knows about has already been joined individually.
func (p *Pool) Wait() {
	p.wg.Wait()
}
