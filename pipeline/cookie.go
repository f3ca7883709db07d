package pipeline

import (
	"context"

	"github.com/nabbar/htcore/cookiejar"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// Cookies attaches jar's matching cookies to every outgoing request as a
// Cookie header, then stores every Set-Cookie response header back into
// jar. The inbound Request is never mutated in place.
func Cookies(jar *cookiejar.Jar) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			if cs := jar.Cookies(req.URL()); len(cs) > 0 {
				req = req.WithHeader("Cookie", cookiejar.Header(cs))
				sig.SetRequest(req)
			}

			resp := next(ctx, sig, req)

			var parsed []cookiejar.Cookie
			for _, v := range resp.Header.Values("Set-Cookie") {
				if c, ok := cookiejar.ParseSetCookie(v); ok {
					parsed = append(parsed, c)
				}
			}
			if len(parsed) > 0 {
				jar.SetCookies(req.URL(), parsed)
			}
			return resp
		}
	}
}
