// Package pipeline builds the ordered middleware chain around a
// Transport-shaped innermost handler: the same "engine.Use(...)" chain
// style nabbar-golib/router applies to gin handlers, generalized from
// *gin.Context to this module's htctx.Context and htreq.Request/Response.
package pipeline

import (
	"context"

	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// Handler sends a Request and returns its Response. transport.Transport's
// RoundTrip takes no sig and is adapted to this signature by a closure
// (see client.New); a Middleware wraps one Handler to produce another.
type Handler func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response

// Middleware wraps a Handler, producing another Handler that runs before
// and/or after it.
type Middleware func(next Handler) Handler

// Chain composes middlewares around innermost, outermost first: the
// first Middleware in the list is the outermost layer a caller's request
// passes through.
func Chain(innermost Handler, mw ...Middleware) Handler {
	h := innermost
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
