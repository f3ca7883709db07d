package htcache

import (
	"strings"

	"github.com/nabbar/htcore/htreq"
)

// CacheKey returns the primary cache key for req: method and normalized
// URL (scheme, lowercased host, path, sorted-independent query string as
// the caller provided it). Only GET and HEAD are cacheable by default.
func CacheKey(req htreq.Request) string {
	u := req.URL()
	return string(req.Method()) + " " + strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.RequestURI()
}

// VariantKey returns the secondary key distinguishing cached variants of
// the same CacheKey, built from the request header values named by vary
// (the response's own Vary header values from a prior pass).
func VariantKey(req htreq.Request, vary []string) string {
	if len(vary) == 0 {
		return ""
	}
	var b strings.Builder
	for _, name := range vary {
		v, _ := req.Header().First(name)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte(';')
	}
	return b.String()
}

// Cacheable reports whether req's method is one CacheMiddleware will
// consider storing a response for.
func Cacheable(req htreq.Request) bool {
	switch req.Method() {
	case htreq.MethodGET, htreq.MethodHEAD:
		return true
	default:
		return false
	}
}
