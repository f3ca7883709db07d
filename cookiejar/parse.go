package cookiejar

import (
	"strconv"
	"strings"
	"time"
)

// cookieDateLayouts are the formats RFC 6265 §5.1.1 requires a parser to
// accept for the Expires attribute.
var cookieDateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 02-Jan-2006 15:04:05 MST",
	"Monday, 02-Jan-06 15:04:05 MST",
}

// ParseSetCookie parses one Set-Cookie header value into a Cookie. Domain
// and Path are left blank when absent so SetCookies can default them
// against the request URL, per RFC 6265 §5.3.
func ParseSetCookie(header string) (Cookie, bool) {
	parts := strings.Split(header, ";")
	nv := strings.SplitN(strings.TrimSpace(parts[0]), "=", 2)
	if len(nv) != 2 || nv[0] == "" {
		return Cookie{}, false
	}
	c := Cookie{Name: strings.TrimSpace(nv[0]), Value: strings.TrimSpace(nv[1])}

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		kv := strings.SplitN(attr, "=", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		var val string
		if len(kv) == 2 {
			val = strings.TrimSpace(kv[1])
		}
		switch key {
		case "domain":
			c.Domain = val
		case "path":
			c.Path = val
		case "secure":
			c.Secure = true
		case "httponly":
			c.HttpOnly = true
		case "samesite":
			c.SameSite = parseSameSite(val)
		case "max-age":
			if n, err := strconv.Atoi(val); err == nil {
				if n <= 0 {
					c.Expires = time.Unix(0, 0).UTC()
				} else {
					c.Expires = time.Now().UTC().Add(time.Duration(n) * time.Second)
				}
			}
		case "expires":
			if c.Expires.IsZero() {
				if t, ok := parseCookieDate(val); ok {
					c.Expires = t
				}
			}
		}
	}
	return c, true
}

func parseSameSite(v string) SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return SameSiteLax
	case "strict":
		return SameSiteStrict
	case "none":
		return SameSiteNone
	default:
		return SameSiteDefault
	}
}

func parseCookieDate(v string) (time.Time, bool) {
	for _, layout := range cookieDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Header renders the cookies in cs as a single Cookie request header
// value ("a=1; b=2").
func Header(cs []Cookie) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
