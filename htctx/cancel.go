package htctx

import (
	"context"
	"errors"
)

// Reason distinguishes why a context stopped: a user cancellation or a
// deadline.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUserCancel
	ReasonTimeout
)

// ErrUserCancelled is the cause a Signal's Cancel attaches; ErrDeadline is
// the cause to pass to context.WithTimeoutCause when deriving a deadline.
// CauseReason recognizes both.
var (
	ErrUserCancelled = errors.New("htctx: cancelled by caller")
	ErrDeadline      = errors.New("htctx: deadline exceeded")
)

// Signal wraps a context.Context with a cancel func that always attaches
// ErrUserCancelled as the cause, so CauseReason can tell it apart from a
// deadline derived from the Signal (context.DeadlineExceeded, or
// ErrDeadline given to context.WithTimeoutCause) even when the two fire
// together.
type Signal struct {
	context.Context
	cancel context.CancelCauseFunc
}

// Background returns a Signal with no deadline, cancellable only
// explicitly.
func Background() Signal {
	ctx, cancel := context.WithCancelCause(context.Background())
	return Signal{Context: ctx, cancel: cancel}
}

// FromContext adapts an existing context.Context (e.g. from a caller's
// API boundary) into a Signal.
func FromContext(parent context.Context) Signal {
	ctx, cancel := context.WithCancelCause(parent)
	return Signal{Context: ctx, cancel: cancel}
}

// Cancel fires the signal as a user cancellation.
func (s Signal) Cancel() {
	s.cancel(ErrUserCancelled)
}

// CauseReason classifies ctx.Err()/context.Cause(ctx) into a Reason.
// A plain context.Canceled (no recognizable cause) is treated as a user
// cancellation, since that is stdlib's default for an explicit Cancel().
func CauseReason(ctx context.Context) Reason {
	if ctx.Err() == nil {
		return ReasonNone
	}
	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, ErrDeadline), errors.Is(cause, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(cause, ErrUserCancelled), errors.Is(cause, context.Canceled):
		return ReasonUserCancel
	default:
		return ReasonTimeout
	}
}
