package htmonitor

import (
	"sync"
	"time"
)

// FailureSink reports capture failures: a panic or error raised while
// building an Event snapshot, never the request's own outcome.
type FailureSink func(err error)

// throttledSink wraps a FailureSink so the first failure within a cooldown
// window is reported immediately and every subsequent one is dropped
// silently until the window elapses.
type throttledSink struct {
	mu       sync.Mutex
	next     FailureSink
	cooldown time.Duration
	until    time.Time
}

func newThrottledSink(next FailureSink, cooldown time.Duration) *throttledSink {
	return &throttledSink{next: next, cooldown: cooldown}
}

func (s *throttledSink) report(err error) {
	if s.next == nil {
		return
	}
	now := time.Now()

	s.mu.Lock()
	suppressed := now.Before(s.until)
	if !suppressed {
		s.until = now.Add(s.cooldown)
	}
	s.mu.Unlock()

	if !suppressed {
		s.next(err)
	}
}
