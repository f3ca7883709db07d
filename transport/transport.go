// Package transport selects between the HTTP/1.1 and HTTP/2 engines per
// request: a fresh or reused HTTP/2 connection is reused across requests
// to the same secure origin that negotiated "h2" via ALPN, while every
// other origin goes through the pooled HTTP/1.1 engine.
//
// Grounded on nabbar-golib/httpcli's pattern of a single façade hiding the
// transport choice from the request builder, adapted to this module's
// pool.Pool / h1.Engine / h2.Connection types rather than net/http's own
// RoundTripper plumbing.
package transport

import (
	"context"
	"sync"

	"github.com/nabbar/htcore/h1"
	"github.com/nabbar/htcore/h2"
	"github.com/nabbar/htcore/htreq"
	"github.com/nabbar/htcore/pool"
)

// Transport is the single entry point middleware's innermost handler
// calls: given a Request, it returns a Response, picking HTTP/1.1 or
// HTTP/2 transparently.
type Transport struct {
	pool   *pool.Pool
	h1     *h1.Engine
	h2opts h2.Options

	mu   sync.Mutex
	h2mu map[pool.Identity]*sync.Mutex
	h2c  map[pool.Identity]*h2.Connection
}

// New returns a Transport drawing connections from p, dialing every H/2
// connection with h2.DefaultOptions().
func New(p *pool.Pool) *Transport {
	return NewWithH2Options(p, h2.DefaultOptions())
}

// NewWithH2Options returns a Transport drawing connections from p,
// dialing every H/2 connection with h2opts.
func NewWithH2Options(p *pool.Pool, h2opts h2.Options) *Transport {
	return &Transport{
		pool:   p,
		h1:     h1.New(p),
		h2opts: h2opts,
		h2c:    make(map[pool.Identity]*h2.Connection),
		h2mu:   make(map[pool.Identity]*sync.Mutex),
	}
}

// RoundTrip sends req, reusing or creating an HTTP/2 connection for
// secure origins, falling back to the HTTP/1.1 engine otherwise (either
// because the origin is plaintext, or the TLS handshake did not
// negotiate "h2").
func (t *Transport) RoundTrip(ctx context.Context, req htreq.Request) htreq.Response {
	if !req.Secure() {
		return t.h1.RoundTrip(ctx, req)
	}

	id := pool.Identity{Host: req.Host(), Port: req.Port(), Secure: true}

	conn, ok, err := t.h2Conn(ctx, id)
	if err != nil {
		return htreq.NewErrorResponse(req, 0, asNetworkErr(err), 0)
	}
	if !ok {
		return t.h1.RoundTrip(ctx, req)
	}
	return conn.Send(ctx, req)
}

// h2Conn returns a live H/2 Connection for id, dialing and negotiating
// one the first time this origin is seen, or reusing the one already
// established. The second return value is false when the origin did not
// negotiate h2, in which case the caller falls back to HTTP/1.1.
func (t *Transport) h2Conn(ctx context.Context, id pool.Identity) (*h2.Connection, bool, error) {
	originLock := t.lockFor(id)
	originLock.Lock()
	defer originLock.Unlock()

	if c, ok := t.existingConn(id); ok {
		if !c.Closed() {
			return c, true, nil
		}
		t.forgetConn(id)
	}

	lease, err := t.pool.Acquire(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if !lease.Conn().NegotiatedHTTP2 {
		lease.ReturnToPool()
		return nil, false, nil
	}

	conn, err := h2.Dial(ctx, lease.Conn().Stream, t.h2opts)
	if err != nil {
		lease.Destroy()
		return nil, false, err
	}
	// The pool's permit is released now; the H/2 Connection itself
	// enforces the real per-origin concurrency limit (its own stream
	// count), not the pool's one-connection-per-permit model.
	lease.TransferOwnership()

	t.mu.Lock()
	t.h2c[id] = conn
	t.mu.Unlock()
	return conn, true, nil
}

func (t *Transport) lockFor(id pool.Identity) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.h2mu[id]
	if !ok {
		l = &sync.Mutex{}
		t.h2mu[id] = l
	}
	return l
}

func (t *Transport) existingConn(id pool.Identity) (*h2.Connection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.h2c[id]
	return c, ok
}

func (t *Transport) forgetConn(id pool.Identity) {
	t.mu.Lock()
	delete(t.h2c, id)
	t.mu.Unlock()
}

// Dispose tears down every live HTTP/2 connection and the underlying
// pool.
func (t *Transport) Dispose() {
	t.mu.Lock()
	conns := make([]*h2.Connection, 0, len(t.h2c))
	for _, c := range t.h2c {
		conns = append(conns, c)
	}
	t.h2c = make(map[pool.Identity]*h2.Connection)
	t.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	t.pool.Dispose()
}
