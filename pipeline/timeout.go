package pipeline

import (
	"context"
	"time"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// Timeout wraps next with a per-attempt deadline: the Request's own
// Timeout when it carries one, else d (no deadline when both are zero).
// If next does not return before the deadline, a synthetic 408
// KindTimeout Response is produced instead of waiting for the transport
// to unwind — but a cancellation of the parent ctx always wins over a
// coincident timeout: when the child context fires, the parent's Err is
// checked, and a cancelled parent yields a KindCancelled Response.
func Timeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			limit := d
			if t := req.Timeout(); t > 0 {
				limit = t
			}
			if limit <= 0 {
				return next(ctx, sig, req)
			}

			child, cancel := context.WithTimeout(ctx, limit)
			defer cancel()

			start := time.Now()
			type result struct{ resp htreq.Response }
			done := make(chan result, 1)
			go func() {
				done <- result{next(child, sig, req)}
			}()

			select {
			case r := <-done:
				return r.resp
			case <-child.Done():
				// The deadline (or an upstream cancellation that also
				// cancelled child) fired before next returned. Distinguish
				// which one actually happened: a user-initiated
				// cancellation on the parent must be reported as
				// Cancelled, never downgraded to a synthetic timeout.
				if ctx.Err() != nil {
					<-done // next() observes child cancelled too; let it unwind
					return htreq.NewErrorResponse(req, 0, herrs.Wrap(herrs.KindCancelled, ctx.Err()), time.Since(start))
				}
				sig.Record("timeout.fired", map[string]string{"after": limit.String()})
				go func() { <-done }() // drain without blocking the caller
				return htreq.NewErrorResponse(req, 408, herrs.Newf(herrs.KindTimeout, "request exceeded %s", limit), time.Since(start))
			}
		}
	}
}
