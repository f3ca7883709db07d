package pipeline

import (
	"context"
	"time"

	"github.com/nabbar/htcore/htcache"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// Cache short-circuits on a fresh hit in store, revalidates a stale-but-
// revalidatable hit with conditional headers, and otherwise passes the
// request through and stores the result. freshFor determines how long a
// newly stored entry stays fresh; a zero duration makes every response
// revalidate-only (never served without a round trip).
func Cache(store *htcache.Store, freshFor time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			if !htcache.Cacheable(req) {
				return next(ctx, sig, req)
			}

			key := htcache.CacheKey(req)
			now := time.Now()

			if entry, ok := store.Get(key, ""); ok {
				if entry.Fresh(now) {
					sig.Record("cache.hit", map[string]string{"key": key})
					return entry.ToResponse(req)
				}
				if entry.Revalidatable() {
					revalReq := withConditionalHeaders(req, entry)
					sig.SetRequest(revalReq)
					resp := next(ctx, sig, revalReq)
					if resp.Status == 304 {
						sig.Record("cache.revalidated", map[string]string{"key": key})
						fresh := entry
						fresh.ExpiresAt = now.Add(freshFor)
						store.Put(fresh)
						return entry.ToResponse(req)
					}
					if resp.Err == nil && resp.Success() {
						store.Put(htcache.NewEntry(key, "", resp, now.Add(freshFor)))
					}
					return resp
				}
			}

			resp := next(ctx, sig, req)
			if resp.Err == nil && resp.Success() {
				store.Put(htcache.NewEntry(key, "", resp, now.Add(freshFor)))
			}
			return resp
		}
	}
}

func withConditionalHeaders(req htreq.Request, entry htcache.Entry) htreq.Request {
	r := req
	if entry.ETag != "" {
		r = r.WithHeader("If-None-Match", entry.ETag)
	}
	if entry.LastModified != "" {
		r = r.WithHeader("If-Modified-Since", entry.LastModified)
	}
	return r
}
