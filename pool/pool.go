package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/htcore/herrs"
)

// DefaultMaxPerHost is the default permit-set size for a freshly seen
// Identity.
const DefaultMaxPerHost = 6

// DefaultMaxIdlePerHost bounds the per-origin idle queue.
const DefaultMaxIdlePerHost = 6

// DefaultIdleTimeout is the default maximum idle lifetime of a pooled
// connection before it is treated as expired on the next Acquire that
// observes it.
const DefaultIdleTimeout = 2 * time.Minute

// softCapKeyTable is the number of distinct Identity entries above which
// Acquire opportunistically sweeps idle-and-unused origins.
const softCapKeyTable = 4096

// Pool is the per-origin connection pool: a concurrent map of Identity to
// originEntry, each holding its own idle queue and permit set.
type Pool struct {
	entries sync.Map // Identity -> *originEntry

	Dialer         *Dialer
	MaxPerHost     int64
	MaxIdlePerHost int
	IdleTimeout    time.Duration

	keyCount int64
	disposed atomic.Bool
}

// New returns a Pool with the given Dialer and the default per-host bounds.
func New(d *Dialer) *Pool {
	return &Pool{
		Dialer:         d,
		MaxPerHost:     DefaultMaxPerHost,
		MaxIdlePerHost: DefaultMaxIdlePerHost,
		IdleTimeout:    DefaultIdleTimeout,
	}
}

func (p *Pool) entryFor(id Identity) *originEntry {
	if v, ok := p.entries.Load(id); ok {
		return v.(*originEntry)
	}
	e := newOriginEntry(p.MaxPerHost, p.MaxIdlePerHost)
	actual, loaded := p.entries.LoadOrStore(id, e)
	if !loaded {
		n := atomic.AddInt64(&p.keyCount, 1)
		if n > softCapKeyTable {
			go p.sweepIdleOrigins()
		}
	}
	return actual.(*originEntry)
}

// sweepIdleOrigins removes origin entries that are both permit-idle and
// idle-queue-empty, keeping the key table from growing unbounded under a
// client that touches many distinct origins over its lifetime. This runs
// opportunistically rather than on a background timer, and tolerates the
// race where an origin
// is deleted just as a new Acquire call is about to recreate its entry —
// the recreated entry simply starts fresh, which is harmless since it
// carries no live connections by definition of being idle.
func (p *Pool) sweepIdleOrigins() {
	p.entries.Range(func(key, value interface{}) bool {
		e := value.(*originEntry)
		if e.permits.Idle() && e.idleQueueEmpty() {
			p.entries.Delete(key)
			atomic.AddInt64(&p.keyCount, -1)
		}
		return true
	})
}

// Acquire implements the pool's acquisition protocol: acquire a permit,
// drain the idle queue for a live candidate, else dial a fresh
// connection, wrap in a Lease. The permit is released on every failure
// path between acquiring it and returning the Lease.
func (p *Pool) Acquire(ctx context.Context, id Identity) (*Lease, error) {
	if p.disposed.Load() {
		return nil, herrs.New(herrs.KindNetwork, "pool: disposed")
	}

	e := p.entryFor(id)

	if err := e.permits.Acquire(ctx); err != nil {
		return nil, err
	}

	if c := e.dequeueIdle(func(c *Conn) bool { return c.IdleExpired(p.IdleTimeout) }); c != nil {
		return newLease(p, e, c), nil
	}

	c, err := p.Dialer.Dial(ctx, id)
	if err != nil {
		e.permits.Release()
		return nil, err
	}

	return newLease(p, e, c), nil
}

// Dispose tears the pool down: every idle connection in every origin is
// closed, and subsequent Acquire calls fail fast. Leases already handed
// out are unaffected — they still release their own permits normally,
// into permit sets that simply go unused from then on.
func (p *Pool) Dispose() {
	if !p.disposed.CompareAndSwap(false, true) {
		return
	}
	p.entries.Range(func(_, value interface{}) bool {
		value.(*originEntry).closeAll()
		return true
	})
}
