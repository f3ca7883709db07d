package pipeline

import (
	"context"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htlog"
	"github.com/nabbar/htcore/htreq"
)

// Logging logs one entry per request on l: an Info entry on success, a
// Warn entry on a non-2xx status, and an Error entry on a transport
// failure. Header values are redacted via htlog.Redact before logging.
func Logging(l *htlog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			resp := next(ctx, sig, req)

			fields := htlog.RequestFields(req).Merge(htlog.ResponseFields(resp))
			entry := l.WithFields(fields)

			switch {
			case resp.Err != nil:
				entry.Error("request failed")
			case !resp.Success():
				entry.Warn("request completed with non-2xx status")
			default:
				entry.Info("request completed")
			}
			return resp
		}
	}
}
