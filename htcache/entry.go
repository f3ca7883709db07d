// Package htcache is a response cache keyed by request: an immutable
// Entry snapshot plus a Store with automatic expiration, grounded on
// nabbar-golib/cache's generic Cache[K, V] (expiring, thread-safe,
// Load/Store/Walk shape), specialized here to htreq's Request/Response
// instead of an arbitrary key/value pair.
package htcache

import (
	"time"

	"github.com/nabbar/htcore/htreq"
)

// Entry is an immutable cached response snapshot. It never references the
// live Request/Response it was built from — Body is its own copy, and
// Headers is cloned at construction.
type Entry struct {
	Status       int
	Headers      htreq.Header
	Body         []byte
	CacheKey     string
	VariantKey   string
	ExpiresAt    time.Time
	ETag         string
	LastModified string
}

// NewEntry builds an Entry from resp, snapshotting its body and headers.
// expiresAt is the zero Time for an entry with no freshness lifetime (only
// revalidatable, never served without checking).
func NewEntry(cacheKey, variantKey string, resp htreq.Response, expiresAt time.Time) Entry {
	etag, _ := resp.Header.First("ETag")
	lastMod, _ := resp.Header.First("Last-Modified")
	return Entry{
		Status:       resp.Status,
		Headers:      resp.Header.Clone(),
		Body:         append([]byte(nil), resp.Body...),
		CacheKey:     cacheKey,
		VariantKey:   variantKey,
		ExpiresAt:    expiresAt,
		ETag:         etag,
		LastModified: lastMod,
	}
}

// Fresh reports whether the entry can be served without revalidation.
func (e Entry) Fresh(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.Before(e.ExpiresAt)
}

// Revalidatable reports whether a conditional request can be built for
// this entry (ETag or Last-Modified present).
func (e Entry) Revalidatable() bool {
	return e.ETag != "" || e.LastModified != ""
}

// ToResponse rebuilds a Response from the entry for req.
func (e Entry) ToResponse(req htreq.Request) htreq.Response {
	return htreq.Response{
		Status:  e.Status,
		Header:  e.Headers.Clone(),
		Body:    append([]byte(nil), e.Body...),
		Request: req,
	}
}
