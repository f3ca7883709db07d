package client

import (
	"context"
	"net/url"
	"time"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// Builder accumulates a single request's header/body/timeout overrides
// before Send dispatches it through the Client's middleware chain.
type Builder struct {
	client  *Client
	method  htreq.Method
	target  string
	header  htreq.Header
	body    []byte
	timeout time.Duration
}

func (c *Client) newBuilder(method htreq.Method, target string) *Builder {
	return &Builder{
		client: c,
		method: method,
		target: c.resolve(target),
		header: htreq.NewHeader(),
	}
}

// resolve joins target against the Client's BaseURL when target is not
// itself absolute.
func (c *Client) resolve(target string) string {
	if c.baseURL == "" {
		return target
	}
	u, err := url.Parse(target)
	if err == nil && u.IsAbs() {
		return target
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return target
	}
	rel, err := url.Parse(target)
	if err != nil {
		return target
	}
	// A BaseURL ending in "/" appends target as a new segment (RFC 3986
	// reference resolution); without the trailing slash, target replaces
	// the BaseURL's last path segment.
	return base.ResolveReference(rel).String()
}

// Request returns a Builder for an arbitrary method, for callers that
// don't know the verb at compile time (a CLI flag, for instance).
func (c *Client) Request(method htreq.Method, target string) *Builder {
	return c.newBuilder(method, target)
}

// Get, Head, Post, Put, Patch, Delete return a Builder for the given
// verb and target (absolute, or relative to the Client's BaseURL).
func (c *Client) Get(target string) *Builder    { return c.newBuilder(htreq.MethodGET, target) }
func (c *Client) Head(target string) *Builder   { return c.newBuilder(htreq.MethodHEAD, target) }
func (c *Client) Post(target string) *Builder   { return c.newBuilder(htreq.MethodPOST, target) }
func (c *Client) Put(target string) *Builder    { return c.newBuilder(htreq.MethodPUT, target) }
func (c *Client) Patch(target string) *Builder  { return c.newBuilder(htreq.MethodPATCH, target) }
func (c *Client) Delete(target string) *Builder { return c.newBuilder(htreq.MethodDELETE, target) }

// WithHeader sets a request header, replacing any previous value under
// the same name.
func (b *Builder) WithHeader(name, value string) *Builder {
	_ = b.header.Set(name, value)
	return b
}

// WithBody sets the request body.
func (b *Builder) WithBody(body []byte) *Builder {
	b.body = body
	return b
}

// WithTimeout sets a per-request timeout, carried on the Request's own
// Timeout field: a pipeline.Timeout middleware in the chain uses it in
// place of its configured duration, and the HTTP/1.1 engine applies it as
// a connection deadline when ctx carries none.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// Send builds the accumulated Request and dispatches it through the
// Client's middleware chain. An error return means the Request itself
// could not be constructed (invalid URL, unsupported scheme) — a
// programmer error distinct from a transport failure, which instead
// populates the returned Response's Err field.
func (b *Builder) Send(ctx context.Context) (htreq.Response, error) {
	req, err := htreq.New(b.method, b.target, b.header, b.body, b.timeout)
	if err != nil {
		return htreq.Response{}, err
	}
	sig := htctx.New(req)
	return b.client.handler(ctx, sig, req), nil
}
