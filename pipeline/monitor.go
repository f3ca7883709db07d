package pipeline

import (
	"context"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htmonitor"
	"github.com/nabbar/htcore/htreq"
)

// Monitor wraps next in a capture that always runs, even when next panics,
// publishing a snapshot to mon regardless of the request's outcome.
func Monitor(mon *htmonitor.Monitor) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			var resp htreq.Response
			defer func() {
				r := recover()
				mon.Capture(sig, req, resp)
				if r != nil {
					panic(r)
				}
			}()
			resp = next(ctx, sig, req)
			return resp
		}
	}
}
