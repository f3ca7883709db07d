package pool

import (
	"net"
	"sync/atomic"
	"time"
)

// Conn is a Pooled Connection: one transport socket plus its wrapping
// stream, negotiated TLS metadata, and bookkeeping fields (last-used
// timestamp, reused flag, disposed flag).
//
// Liveness checks here are best-effort only; the authoritative safety net
// against a server-closed idle connection is h1's retry-on-stale, not
// this peek.
type Conn struct {
	Raw            net.Conn // the underlying socket, for peeking
	Stream         net.Conn // Raw, or the TLS-wrapped stream for secure origins
	Identity       Identity
	TLSVersion     uint16
	ALPN           string
	NegotiatedHTTP2 bool

	lastUsed atomic.Int64 // unix nano
	reused   atomic.Bool
	disposed atomic.Bool
}

// NewConn wraps a freshly dialed stream.
func NewConn(id Identity, raw, stream net.Conn) *Conn {
	c := &Conn{Raw: raw, Stream: stream, Identity: id}
	c.Touch()
	return c
}

// Touch records the current time as last-used.
func (c *Conn) Touch() {
	c.lastUsed.Store(time.Now().UnixNano())
}

// LastUsed returns the last-used timestamp.
func (c *Conn) LastUsed() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}

// MarkReused flags this connection as having come from the idle pool
// rather than being freshly dialed — the flag h1's retry-on-stale
// mechanism consults.
func (c *Conn) MarkReused() { c.reused.Store(true) }

// Reused reports the flag set by MarkReused.
func (c *Conn) Reused() bool { return c.reused.Load() }

// Dispose closes the underlying stream exactly once.
func (c *Conn) Dispose() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return c.Stream.Close()
}

// Disposed reports whether Dispose has run.
func (c *Conn) Disposed() bool { return c.disposed.Load() }

// IdleExpired reports whether the connection has sat idle longer than d.
func (c *Conn) IdleExpired(d time.Duration) bool {
	return time.Since(c.LastUsed()) > d
}

// PeekAlive performs a best-effort liveness check: a read with a 1ms
// deadline that should time out with nothing read on a healthy idle
// connection; data, io.EOF or any other error marks it dead. Never
// authoritative.
func (c *Conn) PeekAlive() bool {
	if c.disposed.Load() {
		return false
	}
	type deadliner interface {
		SetReadDeadline(time.Time) error
	}
	if d, ok := c.Stream.(deadliner); ok {
		_ = d.SetReadDeadline(time.Now().Add(time.Millisecond))
		defer d.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, 1)
	n, err := c.Stream.Read(buf)
	if n > 0 {
		// Unexpected data on an idle connection: treat as dead, the
		// framing is no longer trustworthy.
		return false
	}
	if err == nil {
		return true
	}
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
