package pool

import "sync"

// Lease is a scoped ownership handle for a Conn and its origin's permit.
// Exactly one of the three terminal actions must be called; Dispose is a
// safety net that falls back to Destroy if none was called explicitly,
// and release of the permit happens exactly once on every path including
// a panic recovery path the caller may install around Dispose.
//
// A Lease's reference to its Pool is conceptually weak: the pool never
// retains outstanding leases.
type Lease struct {
	once    sync.Once
	pool    *Pool
	entry   *originEntry
	conn    *Conn
	settled bool
}

func newLease(p *Pool, e *originEntry, c *Conn) *Lease {
	return &Lease{pool: p, entry: e, conn: c}
}

// Conn exposes the leased connection.
func (l *Lease) Conn() *Conn { return l.conn }

// ReturnToPool enqueues the live connection for reuse and releases the
// permit. Use when the transport finished a request cleanly and the
// connection remains keep-alive eligible.
func (l *Lease) ReturnToPool() {
	l.once.Do(func() {
		l.settled = true
		l.conn.Touch()
		l.entry.enqueueIdle(l.conn)
		l.entry.permits.Release()
	})
}

// TransferOwnership hands the connection off to an external owner (the
// H/2 manager, which will multiplex further requests over it) while still
// releasing this lease's permit — the connection itself is not destroyed
// or returned to the idle queue.
func (l *Lease) TransferOwnership() {
	l.once.Do(func() {
		l.settled = true
		l.entry.permits.Release()
	})
}

// Destroy disposes the connection and releases the permit.
func (l *Lease) Destroy() {
	l.once.Do(func() {
		l.settled = true
		_ = l.conn.Dispose()
		l.entry.permits.Release()
	})
}

// Dispose is the lease's catch-all: if no terminal action ran yet, it
// destroys the connection. Safe to call unconditionally in a defer.
func (l *Lease) Dispose() {
	l.Destroy()
}
