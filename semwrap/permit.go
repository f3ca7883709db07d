// Package semwrap provides the per-origin counted permit set the
// connection pool uses to bound concurrency, built on
// golang.org/x/sync/semaphore.Weighted so cancellation during acquisition
// is native instead of hand-rolled with channels.
//
// Grounded on nabbar-golib/semaphore/sem's API shape (its non-test source
// was not present in the retrieval pack; only its test suite was, which
// documents context-aware weighted acquire/release) realized directly on
// top of the real library it wraps.
package semwrap

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/htcore/herrs"
)

// PermitSet gates per-origin concurrency with a fixed number of permits.
type PermitSet struct {
	sem  *semaphore.Weighted
	size int64
}

// NewPermitSet creates a PermitSet allowing n concurrent holders.
func NewPermitSet(n int64) *PermitSet {
	return &PermitSet{sem: semaphore.NewWeighted(n), size: n}
}

// Size returns the configured number of permits.
func (p *PermitSet) Size() int64 { return p.size }

// Acquire blocks for one permit, honoring ctx cancellation. On
// cancellation, no permit is held.
func (p *PermitSet) Acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return herrs.Wrap(herrs.KindCancelled, err)
	}
	return nil
}

// Release returns one permit. Callers must call Release exactly once per
// successful Acquire.
func (p *PermitSet) Release() {
	p.sem.Release(1)
}

// TryAcquire attempts to acquire a permit without blocking.
func (p *PermitSet) TryAcquire() bool {
	return p.sem.TryAcquire(1)
}

// Idle reports whether the permit set currently has zero holders — used
// by the pool's soft-cap eviction sweep.
func (p *PermitSet) Idle() bool {
	return p.sem.TryAcquire(p.size) && func() bool { p.sem.Release(p.size); return true }()
}
