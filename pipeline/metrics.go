package pipeline

import (
	"context"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htmetrics"
	"github.com/nabbar/htcore/htreq"
)

// Metrics records every request's outcome on c: in-flight gauge, total
// counter by status class, and latency histogram.
func Metrics(c *htmetrics.Collector) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			done := c.Begin(req)
			resp := next(ctx, sig, req)
			done(resp)
			return resp
		}
	}
}
