package htmonitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// DefaultCapacity is the ring's default event capacity.
const DefaultCapacity = 1000

// DefaultFailureCooldown is the default throttle window between reported
// capture failures.
const DefaultFailureCooldown = 30 * time.Second

// Listener receives every captured Event. Listeners run synchronously on
// the capturing goroutine after the ring's lock is released, so a slow
// listener delays the request being captured but never holds the ring.
type Listener func(Event)

// Monitor owns a Ring plus the listener fan-out and capture-failure
// throttling around it.
type Monitor struct {
	ring       *Ring
	bodyLimit  int
	failures   *throttledSink
	listenerMu sync.RWMutex
	listeners  []Listener
}

// Options configures a Monitor; the zero value is DefaultCapacity /
// DefaultBodyPreviewBytes / DefaultFailureCooldown with no sink.
type Options struct {
	Capacity        int
	BodyPreviewSize int
	FailureCooldown time.Duration
	OnCaptureFailure FailureSink
}

// New builds a Monitor from opts.
func New(opts Options) *Monitor {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.BodyPreviewSize <= 0 {
		opts.BodyPreviewSize = DefaultBodyPreviewBytes
	}
	if opts.FailureCooldown <= 0 {
		opts.FailureCooldown = DefaultFailureCooldown
	}
	return &Monitor{
		ring:      NewRing(opts.Capacity),
		bodyLimit: opts.BodyPreviewSize,
		failures:  newThrottledSink(opts.OnCaptureFailure, opts.FailureCooldown),
	}
}

// Subscribe registers l to receive every future captured Event.
func (m *Monitor) Subscribe(l Listener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Events returns every Event currently stored, oldest first.
func (m *Monitor) Events() []Event {
	return m.ring.Snapshot()
}

// Len reports how many Events are currently stored.
func (m *Monitor) Len() int {
	return m.ring.Len()
}

// Capture snapshots req/resp into the ring and publishes it to every
// listener. A panic raised while building the snapshot is recovered and
// reported to the failure sink instead of propagating — a capture defect
// must never affect the request it was observing.
func (m *Monitor) Capture(sig *htctx.Context, req htreq.Request, resp htreq.Response) {
	var ev Event
	var ok bool
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.failures.report(fmt.Errorf("htmonitor: capture panic: %v", r))
			}
		}()
		ev = newEvent(sig, req, resp, m.bodyLimit)
		ok = true
	}()
	if !ok {
		return
	}

	m.ring.Push(ev)

	m.listenerMu.RLock()
	ls := append([]Listener(nil), m.listeners...)
	m.listenerMu.RUnlock()
	for _, l := range ls {
		l(ev)
	}
}
