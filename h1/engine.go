package h1

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htreq"
	"github.com/nabbar/htcore/pool"
)

// MaxResponseHeaderBytes bounds the status line + header block of a
// response, mirroring badu-http's persistConn.maxHeaderResponseSize
// conservative default.
const MaxResponseHeaderBytes = 10 << 20

// Engine sends requests over HTTP/1.1 connections leased from a Pool,
// retrying exactly once on a connection the server closed while idle
//.
type Engine struct {
	Pool *pool.Pool
}

// New returns an Engine drawing connections from p.
func New(p *pool.Pool) *Engine {
	return &Engine{Pool: p}
}

// RoundTrip sends req and returns its Response. Transport-level failures
// are carried in Response.Err rather than as a Go error.
func (e *Engine) RoundTrip(ctx context.Context, req htreq.Request) htreq.Response {
	start := time.Now()

	id := pool.Identity{Host: req.Host(), Port: req.Port(), Secure: req.Secure()}

	lease, err := e.Pool.Acquire(ctx, id)
	if err != nil {
		return htreq.NewErrorResponse(req, 0, asKindErr(err, herrs.KindNetwork), time.Since(start))
	}

	resp, retryable := e.attempt(ctx, lease, req, start)
	if !retryable {
		return resp
	}

	// The reused connection was closed by the server between pool-return
	// and this write; badu-http's persistConn.shouldRetryRequest permits
	// exactly one retry here because nothing was written to a fresh
	// connection and the failure is attributable to idle staleness, not
	// to the request itself.
	lease2, err := e.Pool.Acquire(ctx, id)
	if err != nil {
		return htreq.NewErrorResponse(req, 0, asKindErr(err, herrs.KindNetwork), time.Since(start))
	}
	resp, _ = e.attempt(ctx, lease2, req, start)
	return resp
}

// attempt performs one send/receive cycle over the leased connection. The
// returned bool reports whether the failure is eligible for the
// retry-on-stale path: the connection was reused from the idle pool, and
// the failure happened before any response bytes were read.
func (e *Engine) attempt(ctx context.Context, lease *pool.Lease, req htreq.Request, start time.Time) (htreq.Response, bool) {
	conn := lease.Conn()
	wasReused := conn.Reused()

	if d, ok := ctx.Deadline(); ok {
		_ = conn.Stream.SetDeadline(d)
	} else if t := req.Timeout(); t > 0 {
		_ = conn.Stream.SetDeadline(time.Now().Add(t))
	}
	defer conn.Stream.SetDeadline(time.Time{})

	bw := bufio.NewWriter(conn.Stream)
	if err := writeRequest(bw, req); err != nil {
		lease.Destroy()
		if wasReused && nothingButStaleWrite(err) {
			return htreq.Response{}, true
		}
		return htreq.NewErrorResponse(req, 0, classifyIOErr(ctx, err), time.Since(start)), false
	}

	br := bufio.NewReader(conn.Stream)
	if _, err := br.Peek(1); err != nil {
		lease.Destroy()
		if wasReused && err == io.EOF {
			return htreq.Response{}, true
		}
		return htreq.NewErrorResponse(req, 0, classifyIOErr(ctx, err), time.Since(start)), false
	}
	status, header, body, closeConn, err := readResponse(br, MaxResponseHeaderBytes)
	if err != nil {
		lease.Destroy()
		return htreq.NewErrorResponse(req, 0, classifyIOErr(ctx, err), time.Since(start)), false
	}

	if closeConn {
		lease.Destroy()
	} else {
		lease.ReturnToPool()
	}

	return htreq.Response{
		Status:  status,
		Header:  header,
		Body:    body,
		Elapsed: time.Since(start),
		Request: req,
	}, false
}

// nothingButStaleWrite reports whether err looks like the first write to
// a reused connection hitting a half-closed socket (ECONNRESET / EPIPE /
// io.EOF), as opposed to a genuine mid-write failure on a live
// connection.
func nothingButStaleWrite(err error) bool {
	if err == io.EOF || err == io.ErrClosedPipe {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "reset by peer") || strings.Contains(msg, "broken pipe")
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}

func classifyIOErr(ctx context.Context, err error) herrs.Error {
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return herrs.Wrap(herrs.KindTimeout, err)
		}
		return herrs.Wrap(herrs.KindCancelled, err)
	}
	var ne net.Error
	if ok := asNetError(err, &ne); ok && ne.Timeout() {
		return herrs.Wrap(herrs.KindTimeout, err)
	}
	return herrs.Wrap(herrs.KindNetwork, err)
}

func asKindErr(err error, fallback herrs.Kind) herrs.Error {
	if he := herrs.Get(err); he != nil {
		return he
	}
	return herrs.Wrap(fallback, err)
}
