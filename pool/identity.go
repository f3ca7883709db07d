// Package pool implements a per-origin connection pool: bounded
// idle-connection reuse, bounded per-origin concurrency via permits, DNS
// resolution with Happy-Eyeballs fallback, and TLS wrap on secure
// origins.
//
// Grounded on badu-http's src/http/tport/persist_conn.go (a restructured
// fork of net/http's own persistConn) for idle-connection bookkeeping and
// stale-connection posture.
package pool

import "fmt"

// Identity is (host, port, secure): the pool's key. Invariant: one idle
// queue and one permit set per Identity.
type Identity struct {
	Host   string
	Port   string
	Secure bool
}

func (id Identity) String() string {
	scheme := "http"
	if id.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%s", scheme, id.Host, id.Port)
}
