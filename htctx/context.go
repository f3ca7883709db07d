// Package htctx implements the per-request mutable sidecar: a monotonic
// stopwatch, an append-only timeline of named events, a string-keyed
// state bag, and a reference to the current Request that middleware can
// repoint when it rewrites headers.
//
// The timeline-event shape mirrors the (name, timestamp, data) triple
// nabbar-golib/monitor's test suite exercises for its own event capture
// (the package's non-test source was not present in the retrieval pack,
// only its behavior via tests).
package htctx

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nabbar/htcore/htreq"
)

// Event is one entry in a Context's timeline.
type Event struct {
	Name      string
	Timestamp time.Time
	Data      map[string]string
}

// Context is the per-request sidecar. All methods are safe for concurrent
// use by pipeline middlewares and the transport layer.
type Context struct {
	mu        sync.Mutex
	start     time.Time
	monoStart time.Time
	timeline  []Event
	state     map[string]any
	req       htreq.Request
	id        uuid.UUID
}

// New creates a Context for req, starting its stopwatch immediately and
// recording a "request.start" timeline event.
func New(req htreq.Request) *Context {
	now := time.Now()
	c := &Context{
		start:     now,
		monoStart: now,
		state:     make(map[string]any),
		req:       req,
		id:        req.ID(),
	}
	c.record("request.start", map[string]string{"request_id": c.id.String()})
	return c
}

// Elapsed returns the duration since the stopwatch started, using the
// monotonic clock reading captured at New.
func (c *Context) Elapsed() time.Duration {
	return time.Since(c.monoStart)
}

func (c *Context) record(name string, data map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeline = append(c.timeline, Event{Name: name, Timestamp: time.Now(), Data: data})
}

// Record appends a named event to the timeline, with optional string data.
func (c *Context) Record(name string, data map[string]string) {
	c.record(name, data)
}

// Timeline returns a snapshot copy of the recorded events.
func (c *Context) Timeline() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.timeline...)
}

// Set stores a value in the per-request state bag.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[key] = value
}

// Get retrieves a value from the state bag.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.state[key]
	return v, ok
}

// Request returns the current Request associated with this context.
func (c *Context) Request() htreq.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

// SetRequest repoints the context at a new Request — used by middleware
// that rewrites headers (e.g. DefaultHeaders, CookieMiddleware) so
// downstream handlers and the timeline reflect the active attempt.
func (c *Context) SetRequest(req htreq.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.req = req
}

// ID returns the request's correlation id.
func (c *Context) ID() uuid.UUID { return c.id }
