package htreq

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Request is an immutable request descriptor. Any transformation (a
// middleware "rewriting" headers, for instance) must produce a new
// Request — see the With* helpers below.
type Request struct {
	id      uuid.UUID
	method  Method
	url     *url.URL
	header  Header
	body    []byte
	timeout time.Duration
}

// New validates and constructs a Request. target must be an absolute URI
// with scheme http or https.
func New(method Method, target string, header Header, body []byte, timeout time.Duration) (Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Request{}, fmt.Errorf("htreq: invalid url: %w", err)
	}
	if !u.IsAbs() {
		return Request{}, fmt.Errorf("htreq: url must be absolute: %q", target)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return Request{}, fmt.Errorf("htreq: unsupported scheme: %q", u.Scheme)
	}
	return Request{
		id:      uuid.New(),
		method:  method,
		url:     u,
		header:  header.Clone(),
		body:    append([]byte(nil), body...),
		timeout: timeout,
	}, nil
}

func (r Request) ID() uuid.UUID        { return r.id }
func (r Request) Method() Method       { return r.method }
func (r Request) URL() *url.URL        { return r.url }
func (r Request) Header() Header       { return r.header.Clone() }
func (r Request) Body() []byte         { return append([]byte(nil), r.body...) }
func (r Request) Timeout() time.Duration { return r.timeout }

// Secure reports whether the target URI uses https.
func (r Request) Secure() bool { return r.url.Scheme == "https" }

// Host returns the target host without port.
func (r Request) Host() string { return r.url.Hostname() }

// Port returns the target port, defaulting to 80/443.
func (r Request) Port() string {
	if p := r.url.Port(); p != "" {
		return p
	}
	if r.Secure() {
		return "443"
	}
	return "80"
}

// WithHeader returns a new Request with name set to value; the receiver is
// untouched.
func (r Request) WithHeader(name, value string) Request {
	n := r
	n.header = r.header.Clone()
	_ = n.header.Set(name, value)
	return n
}

// WithAddedHeader is WithHeader but appends instead of replacing.
func (r Request) WithAddedHeader(name, value string) Request {
	n := r
	n.header = r.header.Clone()
	_ = n.header.Add(name, value)
	return n
}

// WithBody returns a new Request with the given body bytes.
func (r Request) WithBody(body []byte) Request {
	n := r
	n.body = append([]byte(nil), body...)
	return n
}

// WithTimeout returns a new Request with the given per-request timeout.
func (r Request) WithTimeout(d time.Duration) Request {
	n := r
	n.timeout = d
	return n
}
