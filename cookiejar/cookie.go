// Package cookiejar is an RFC 6265 cookie store: domain/path/scheme/expiry
// matching, a single reader-writer lock guarding all state (the "one
// explicit synchronization strategy" shape nabbar-golib/semaphore and
// this module's pool package both favor over ad-hoc atomics plus
// mutexes), and the 3000-total/50-per-domain bounds enforced on every
// write.
package cookiejar

import (
	"net/url"
	"strings"
	"time"
)

// SameSite mirrors net/http.SameSite without importing net/http, keeping
// this package's only dependency on RFC 6265 semantics rather than the
// stdlib HTTP server/client stack.
type SameSite int

const (
	SameSiteDefault SameSite = iota
	SameSiteLax
	SameSiteStrict
	SameSiteNone
)

// Cookie is one stored cookie, keyed by (Name, Domain, Path).
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time // zero means session cookie, never expires on its own
	Secure   bool
	HttpOnly bool
	SameSite SameSite
}

func (c Cookie) key() cookieKey {
	return cookieKey{name: c.Name, domain: c.Domain, path: c.Path}
}

func (c Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// domainMatch reports whether host satisfies c's Domain attribute per
// RFC 6265 §5.1.3: exact match, or a proper subdomain of a leading-dot
// (or bare) domain.
func (c Cookie) domainMatch(host string) bool {
	d := strings.TrimPrefix(c.Domain, ".")
	host = strings.ToLower(host)
	d = strings.ToLower(d)
	if host == d {
		return true
	}
	return strings.HasSuffix(host, "."+d)
}

// pathMatch reports whether requestPath satisfies c's Path attribute per
// RFC 6265 §5.1.4.
func (c Cookie) pathMatch(requestPath string) bool {
	if requestPath == c.Path {
		return true
	}
	if strings.HasPrefix(requestPath, c.Path) {
		if strings.HasSuffix(c.Path, "/") {
			return true
		}
		if len(requestPath) > len(c.Path) && requestPath[len(c.Path)] == '/' {
			return true
		}
	}
	return false
}

func defaultPath(u *url.URL) string {
	p := u.Path
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

type cookieKey struct {
	name, domain, path string
}
