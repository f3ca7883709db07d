package replay

import (
	"sort"
	"strings"

	"github.com/nabbar/htcore/htreq"
)

// volatileHeaders are excluded from the match key by default since they
// legitimately differ between a recording and its replay (timestamps,
// correlation ids, credentials).
var volatileHeaders = map[string]bool{
	"date":                true,
	"age":                 true,
	"x-request-id":        true,
	"x-trace-id":          true,
	"traceparent":         true,
	"tracestate":          true,
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
}

// NormalizeURL lowercases scheme and host, keeps path and query verbatim.
func NormalizeURL(req htreq.Request) string {
	u := req.URL()
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.RequestURI()
}

// MatchHeaders returns req's headers filtered to the ones that
// participate in the match key: every header not in volatileHeaders,
// unless name appears in include.
func MatchHeaders(req htreq.Request, include []string) map[string][]string {
	inc := make(map[string]bool, len(include))
	for _, n := range include {
		inc[strings.ToLower(n)] = true
	}

	out := make(map[string][]string)
	req.Header().Range(func(name, value string) {
		lname := strings.ToLower(name)
		if volatileHeaders[lname] && !inc[lname] {
			return
		}
		out[lname] = append(out[lname], value)
	})
	return out
}

// MatchKey builds the deterministic lookup key for req: method,
// normalized URL, sorted filtered headers, and body hash.
func MatchKey(req htreq.Request, include []string) string {
	return matchKeyFromParts(string(req.Method()), NormalizeURL(req), MatchHeaders(req, include), HashBody(req.Body()))
}

// matchKeyFromParts builds the same key MatchKey does, from already
// separated parts, so a recorded Entry can be re-keyed without an
// htreq.Request to hand.
func matchKeyFromParts(method, normalizedURL string, headers map[string][]string, bodyHash string) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(normalizedURL)

	names := make([]string, 0, len(headers))
	for n := range headers {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		vs := append([]string(nil), headers[n]...)
		sort.Strings(vs)
		b.WriteByte(' ')
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(strings.Join(vs, ","))
	}

	b.WriteByte(' ')
	b.WriteString(bodyHash)
	return b.String()
}
