package pool

import (
	"sync"

	"github.com/nabbar/htcore/semwrap"
)

// originEntry is the per-Identity state: one idle queue, one permit set.
type originEntry struct {
	mu      sync.Mutex
	idle    []*Conn
	maxIdle int
	permits *semwrap.PermitSet
}

func newOriginEntry(maxPerHost int64, maxIdle int) *originEntry {
	return &originEntry{
		permits: semwrap.NewPermitSet(maxPerHost),
		maxIdle: maxIdle,
	}
}

// enqueueIdle appends c to the FIFO idle queue, evicting the oldest entry
// (LRU) if the queue is at capacity.
func (e *originEntry) enqueueIdle(c *Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.idle) >= e.maxIdle {
		stale := e.idle[0]
		e.idle = e.idle[1:]
		_ = stale.Dispose()
	}
	e.idle = append(e.idle, c)
}

// dequeueIdle pops idle connections oldest-first, skipping and disposing
// any that are dead or idle-expired, until a live candidate is found or
// the queue is empty.
func (e *originEntry) dequeueIdle(idleTimeout func(*Conn) bool) *Conn {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.idle) > 0 {
		c := e.idle[0]
		e.idle = e.idle[1:]
		if idleTimeout(c) || !c.PeekAlive() {
			_ = c.Dispose()
			continue
		}
		c.MarkReused()
		return c
	}
	return nil
}

// idleQueueEmpty reports whether there are no idle connections.
func (e *originEntry) idleQueueEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.idle) == 0
}

// closeAll disposes every idle connection, for pool-wide disposal.
func (e *originEntry) closeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.idle {
		_ = c.Dispose()
	}
	e.idle = nil
}
