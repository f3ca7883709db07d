package pipeline

import (
	"context"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// HeaderMode controls whether DefaultHeaders leaves a caller-set header
// alone or overrides it.
type HeaderMode int

const (
	// SkipIfPresent (the default) never touches a header the caller
	// already set.
	SkipIfPresent HeaderMode = iota
	// Override always writes the default, even over a caller-set value.
	Override
)

// DefaultHeaders adds name: value to every outgoing request that doesn't
// already carry name, unless mode is Override. The inbound Request is
// never mutated in place — a new Request is built and sig is repointed at
// it, per htreq's immutability contract.
func DefaultHeaders(name, value string, mode HeaderMode) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			if mode == SkipIfPresent && req.Header().Has(name) {
				return next(ctx, sig, req)
			}
			req2 := req.WithHeader(name, value)
			sig.SetRequest(req2)
			return next(ctx, sig, req2)
		}
	}
}
