package h2

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htreq"
)

// Connection is one negotiated HTTP/2 connection: a single Framer shared
// by every multiplexed stream, a writer serialized behind writeMu (HPACK
// encoding is stateful and must stay in frame order), and a read loop
// goroutine that demultiplexes incoming frames to their Stream.
type Connection struct {
	nc   net.Conn
	fr   *http2.Framer
	opts Options

	writeMu  sync.Mutex
	encBuf   bytes.Buffer
	enc      *hpack.Encoder
	connSend int32 // guarded by sendMu below
	sendMu   sync.Mutex
	sendCond *sync.Cond

	mu           sync.Mutex
	streams      map[uint32]*stream
	nextStreamID uint32
	connRecv     int32
	goAway       bool
	lastPeerID   uint32
	closeErr     herrs.Error

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial performs the connection preface and SETTINGS exchange over an
// already-established (and, for a secure origin, already TLS-wrapped)
// net.Conn, then starts the read loop. The caller is responsible for
// having negotiated "h2" via ALPN before calling Dial. A zero Options
// disables every guard (including the body cap); pass DefaultOptions()
// for the RFC-bound defaults.
func Dial(ctx context.Context, nc net.Conn, opts Options) (*Connection, error) {
	c := &Connection{
		nc:           nc,
		opts:         opts,
		streams:      make(map[uint32]*stream),
		nextStreamID: 1,
		connRecv:     int32(opts.InitialWindowSize),
		closed:       make(chan struct{}),
	}
	c.sendCond = sync.NewCond(&c.sendMu)
	c.connSend = int32(opts.InitialWindowSize)

	c.fr = http2.NewFramer(nc, nc)
	c.fr.SetMaxReadFrameSize(opts.MaxFrameSize)
	dec := hpack.NewDecoder(4096, nil)
	dec.SetMaxStringLength(int(opts.MaxHeaderListBytes))
	c.fr.ReadMetaHeaders = dec
	c.fr.MaxHeaderListSize = opts.MaxHeaderListBytes

	c.enc = hpack.NewEncoder(&c.encBuf)

	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	if _, err := nc.Write([]byte(http2.ClientPreface)); err != nil {
		return nil, herrs.Wrap(herrs.KindProtocol, err)
	}
	if err := c.fr.WriteSettings(localSettings(opts)...); err != nil {
		return nil, herrs.Wrap(herrs.KindProtocol, err)
	}
	_ = nc.SetDeadline(time.Time{})

	go c.readLoop()
	return c, nil
}

// Closed reports whether the connection has shut down (GOAWAY received,
// a protocol error, or an explicit Close).
func (c *Connection) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.goAway
	}
}

func (c *Connection) fail(err herrs.Error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeErr = err
		streams := make([]*stream, 0, len(c.streams))
		for _, s := range c.streams {
			streams = append(streams, s)
		}
		c.mu.Unlock()
		for _, s := range streams {
			s.finish(err)
		}
		_ = c.nc.Close()
		close(c.closed)
	})
}

// Close tears the connection down without a GOAWAY — used when the pool
// evicts an idle H/2 connection.
func (c *Connection) Close() {
	c.fail(herrs.New(herrs.KindCancelled, "h2: connection closed"))
}

// resetStream sends RST_STREAM(code) for id without touching stream
// bookkeeping; the caller is responsible for finishing the stream.
func (c *Connection) resetStream(id uint32, code http2.ErrCode) {
	c.writeMu.Lock()
	_ = c.fr.WriteRSTStream(id, code)
	c.writeMu.Unlock()
}

func (c *Connection) newStream() *stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextStreamID
	c.nextStreamID += 2
	win := int32(c.opts.InitialWindowSize)
	s := newStream(id, win, win)
	c.streams[id] = s
	return s
}

func (c *Connection) removeStream(id uint32) {
	c.mu.Lock()
	delete(c.streams, id)
	c.mu.Unlock()
}

// Send opens a new stream, writes the request's headers (and body, if
// any), and blocks until a full response arrives or ctx is done.
func (c *Connection) Send(ctx context.Context, req htreq.Request) htreq.Response {
	start := time.Now()

	if c.Closed() {
		return htreq.NewErrorResponse(req, 0, herrs.New(herrs.KindNetwork, "h2: connection closed"), time.Since(start))
	}

	s := c.newStream()
	defer c.removeStream(s.id)

	if err := c.writeHeaders(s, req); err != nil {
		s.finish(herrs.Wrap(herrs.KindNetwork, err))
		return htreq.NewErrorResponse(req, 0, herrs.Wrap(herrs.KindNetwork, err), time.Since(start))
	}

	body := req.Body()
	if len(body) > 0 {
		if err := c.writeBody(s, body); err != nil {
			s.finish(herrs.Wrap(herrs.KindNetwork, err))
			return htreq.NewErrorResponse(req, 0, herrs.Wrap(herrs.KindNetwork, err), time.Since(start))
		}
	}
	// The last frame written above (HEADERS when body is empty, the
	// final DATA frame otherwise) carried END_STREAM.
	s.halfCloseLocal()

	done := make(chan struct{})
	go func() {
		select {
		case <-s.done:
		case <-ctx.Done():
			s.finish(herrs.Wrap(herrs.KindCancelled, ctx.Err()))
		}
		close(done)
	}()
	<-done

	status, header, respBody, errr := s.snapshot()
	if errr != nil {
		return htreq.NewErrorResponse(req, status, errr, time.Since(start))
	}
	return htreq.Response{
		Status:  status,
		Header:  header,
		Body:    respBody,
		Elapsed: time.Since(start),
		Request: req,
	}
}

// writeHeaders encodes req's pseudo-headers and ordinary headers into one
// HEADERS frame. Every HPACK encode is funneled through writeMu since the
// dynamic table is shared connection-wide and must observe frame order.
func (c *Connection) writeHeaders(s *stream, req htreq.Request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.encBuf.Reset()
	fields := []hpack.HeaderField{
		{Name: ":method", Value: string(req.Method())},
		{Name: ":scheme", Value: req.URL().Scheme},
		{Name: ":authority", Value: req.URL().Host},
		{Name: ":path", Value: requestPath(req)},
	}
	for _, f := range fields {
		if err := c.enc.WriteField(f); err != nil {
			return err
		}
	}
	req.Header().Range(func(name, value string) {
		_ = c.enc.WriteField(hpack.HeaderField{Name: name, Value: value})
	})

	endStream := len(req.Body()) == 0
	return c.fr.WriteHeaders(http2.HeadersFrameParam{
		StreamID:      s.id,
		BlockFragment: c.encBuf.Bytes(),
		EndHeaders:    true,
		EndStream:     endStream,
	})
}

func requestPath(req htreq.Request) string {
	p := req.URL().RequestURI()
	if p == "" {
		return "/"
	}
	return p
}

// writeBody splits body into maxFrameSize DATA frames, blocking on both
// the stream's and the connection's send window between frames.
func (c *Connection) writeBody(s *stream, body []byte) error {
	for len(body) > 0 {
		n := s.awaitSendWindow(int32(len(body)))
		if n == 0 {
			return fmt.Errorf("h2: stream closed while writing body")
		}
		n = c.awaitConnSendWindow(n)
		if n <= 0 {
			return fmt.Errorf("h2: connection closed while writing body")
		}
		chunk := body[:n]
		body = body[n:]

		c.writeMu.Lock()
		err := c.fr.WriteData(s.id, len(body) == 0, chunk)
		c.writeMu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) awaitConnSendWindow(want int32) int32 {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	for c.connSend <= 0 {
		c.sendCond.Wait()
	}
	if want > c.connSend {
		want = c.connSend
	}
	if maxFrame := int32(c.opts.MaxFrameSize); want > maxFrame {
		want = maxFrame
	}
	c.connSend -= want
	return want
}

func (c *Connection) addConnSendWindow(delta int32) {
	c.sendMu.Lock()
	c.connSend += delta
	c.sendMu.Unlock()
	c.sendCond.Broadcast()
}
