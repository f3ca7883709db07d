package h2

import (
	"io"
	"net/http"
	"strconv"

	"golang.org/x/net/http2"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htreq"
)

// readLoop demultiplexes incoming frames to their Stream until reading a
// frame fails, at which point it fails the connection and returns.
func (c *Connection) readLoop() {
	for {
		f, err := c.fr.ReadFrame()
		if err != nil {
			if err == io.EOF {
				c.fail(herrs.New(herrs.KindNetwork, "h2: connection closed by peer"))
			} else {
				c.fail(herrs.Wrap(herrs.KindProtocol, err))
			}
			return
		}

		switch fr := f.(type) {
		case *http2.SettingsFrame:
			c.handleSettings(fr)
		case *http2.MetaHeadersFrame:
			c.handleHeaders(fr)
		case *http2.DataFrame:
			c.handleData(fr)
		case *http2.WindowUpdateFrame:
			c.handleWindowUpdate(fr)
		case *http2.RSTStreamFrame:
			c.handleRSTStream(fr)
		case *http2.GoAwayFrame:
			c.handleGoAway(fr)
		case *http2.PingFrame:
			c.handlePing(fr)
		default:
			// Unknown or unhandled frame type: ignore, per RFC 7540 §4.1
			// "implementations MUST ignore and discard frames of unknown
			// types".
		}
	}
}

func (c *Connection) handleSettings(fr *http2.SettingsFrame) {
	if fr.IsAck() {
		return
	}
	c.writeMu.Lock()
	err := c.fr.WriteSettingsAck()
	c.writeMu.Unlock()
	if err != nil {
		c.fail(herrs.Wrap(herrs.KindNetwork, err))
	}
}

func (c *Connection) lookupStream(id uint32) *stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streams[id]
}

func (c *Connection) handleHeaders(fr *http2.MetaHeadersFrame) {
	s := c.lookupStream(fr.StreamID)
	if s == nil {
		return
	}
	if fr.Truncated {
		s.finish(herrs.New(herrs.KindProtocol, "h2: response header block exceeded local limit"))
		return
	}

	status := 0
	h := htreq.NewHeader()
	for _, f := range fr.Fields {
		if f.Name == ":status" {
			status, _ = strconv.Atoi(f.Value)
			continue
		}
		_ = h.Add(f.Name, f.Value)
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	s.setHeader(status, h)

	if fr.StreamEnded() {
		s.finish(nil)
	}
}

func (c *Connection) handleData(fr *http2.DataFrame) {
	s := c.lookupStream(fr.StreamID)
	data := fr.Data()
	n := int32(len(data))

	if s != nil {
		if !s.appendBody(data, c.opts.MaxResponseBodyBytes) {
			c.resetStream(fr.StreamID, http2.ErrCodeEnhanceYourCalm)
			s.finish(herrs.Newf(herrs.KindProtocol, "h2: response body for stream %d exceeded the %d byte local cap", fr.StreamID, c.opts.MaxResponseBodyBytes))
		} else if update, delta := s.consumeRecvWindow(n); update {
			c.writeMu.Lock()
			_ = c.fr.WriteWindowUpdate(fr.StreamID, uint32(delta))
			c.writeMu.Unlock()
		}
	}

	c.mu.Lock()
	c.connRecv -= n
	initWin := int32(c.opts.InitialWindowSize)
	needUpdate := c.connRecv < initWin/2
	var connDelta int32
	if needUpdate {
		connDelta = initWin - c.connRecv
		c.connRecv = initWin
	}
	c.mu.Unlock()
	if needUpdate {
		c.writeMu.Lock()
		_ = c.fr.WriteWindowUpdate(0, uint32(connDelta))
		c.writeMu.Unlock()
	}

	if s != nil && fr.StreamEnded() {
		s.finish(nil)
	}
}

func (c *Connection) handleWindowUpdate(fr *http2.WindowUpdateFrame) {
	if fr.StreamID == 0 {
		c.addConnSendWindow(int32(fr.Increment))
		return
	}
	if s := c.lookupStream(fr.StreamID); s != nil {
		s.addSendWindow(int32(fr.Increment))
	}
}

func (c *Connection) handleRSTStream(fr *http2.RSTStreamFrame) {
	if s := c.lookupStream(fr.StreamID); s != nil {
		s.finish(herrs.Newf(herrs.KindProtocol, "h2: stream reset by peer (code %v)", fr.ErrCode))
	}
}

func (c *Connection) handleGoAway(fr *http2.GoAwayFrame) {
	c.mu.Lock()
	c.goAway = true
	c.lastPeerID = fr.LastStreamID
	toFail := make([]*stream, 0)
	for id, s := range c.streams {
		if id > fr.LastStreamID {
			toFail = append(toFail, s)
		}
	}
	c.mu.Unlock()

	// Streams above the last accepted stream ID are retryable elsewhere
	// (they were never processed by the server); streams at or below it
	// are left to complete normally.
	for _, s := range toFail {
		s.finish(herrs.New(herrs.KindNetwork, "h2: stream not processed before GOAWAY, retryable on a new connection"))
	}

	if fr.LastStreamID == 0 {
		c.fail(herrs.New(herrs.KindNetwork, "h2: GOAWAY received"))
	}
}

func (c *Connection) handlePing(fr *http2.PingFrame) {
	if fr.IsAck() {
		return
	}
	c.writeMu.Lock()
	_ = c.fr.WritePing(true, fr.Data)
	c.writeMu.Unlock()
}
