package h2

import (
	"sync"
	"time"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htreq"
)

type streamState int

const (
	stateIdle streamState = iota
	stateOpen
	stateHalfClosedLocal
	stateClosed
)

// stream tracks one HTTP/2 request/response exchange multiplexed over a
// shared Connection.
type stream struct {
	id uint32

	mu             sync.Mutex
	state          streamState
	sendWin        int32
	recvWin        int32
	initialRecvWin int32
	winCond        *sync.Cond

	status int
	header htreq.Header
	body   []byte

	done chan struct{}
	err  herrs.Error
}

func newStream(id uint32, initialSendWin, initialRecvWin int32) *stream {
	s := &stream{
		id:             id,
		state:          stateOpen,
		sendWin:        initialSendWin,
		recvWin:        initialRecvWin,
		initialRecvWin: initialRecvWin,
		header:         htreq.NewHeader(),
		done:           make(chan struct{}),
	}
	s.winCond = sync.NewCond(&s.mu)
	return s
}

// awaitSendWindow blocks until some send-window is available or the
// stream closes, then grants and deducts min(n, available window). The
// grant may be less than n, and is zero when the stream closed with no
// window left.
func (s *stream) awaitSendWindow(n int32) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.sendWin <= 0 && s.state != stateClosed {
		s.winCond.Wait()
	}
	if s.sendWin < n {
		n = s.sendWin
	}
	if n < 0 {
		n = 0
	}
	s.sendWin -= n
	return n
}

func (s *stream) addSendWindow(delta int32) {
	s.mu.Lock()
	s.sendWin += delta
	s.mu.Unlock()
	s.winCond.Broadcast()
}

func (s *stream) consumeRecvWindow(n int32) (needsUpdate bool, update int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvWin -= n
	if s.recvWin < s.initialRecvWin/2 {
		update = s.initialRecvWin - s.recvWin
		s.recvWin = s.initialRecvWin
		return true, update
	}
	return false, 0
}

// appendBody accumulates b onto the response body, refusing the append
// and reporting false once doing so would push the total past maxBody
// (zero means unlimited). The caller resets the stream on a false
// return; the partially accumulated body is never surfaced.
func (s *stream) appendBody(b []byte, maxBody int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxBody > 0 && int64(len(s.body))+int64(len(b)) > maxBody {
		return false
	}
	s.body = append(s.body, b...)
	return true
}

func (s *stream) setHeader(status int, h htreq.Header) {
	s.mu.Lock()
	s.status = status
	s.header = h
	s.mu.Unlock()
}

// halfCloseLocal transitions an Open stream to HalfClosedLocal once its
// final DATA or HEADERS frame carried END_STREAM. A no-op once the stream
// has already reached Closed (the response may have finished first).
func (s *stream) halfCloseLocal() {
	s.mu.Lock()
	if s.state == stateOpen {
		s.state = stateHalfClosedLocal
	}
	s.mu.Unlock()
}

func (s *stream) finish(err herrs.Error) {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	s.err = err
	s.mu.Unlock()
	s.winCond.Broadcast()
	close(s.done)
}

func (s *stream) wait(timeout time.Duration) bool {
	if timeout <= 0 {
		<-s.done
		return true
	}
	select {
	case <-s.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *stream) snapshot() (int, htreq.Header, []byte, herrs.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.header, s.body, s.err
}
