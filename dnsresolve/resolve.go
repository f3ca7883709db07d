// Package dnsresolve resolves a host to a Happy-Eyeballs-ordered address
// list with an explicit timeout, since DNS has no inherent cancellation
// on some platforms.
//
// Grounded on nabbar-golib/httpcli/dns-mapper's custom DialContext/cache
// pattern, trimmed to plain resolution (the mapping/override feature
// dns-mapper adds is out of scope here — the connection pool only needs
// resolution, not hostname remapping).
package dnsresolve

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/nabbar/htcore/herrs"
)

// DefaultTimeout is the default DNS resolution timeout.
const DefaultTimeout = 5 * time.Second

// Resolver resolves hostnames with a bounded timeout, distinguishing user
// cancellation from a resolution timeout.
type Resolver struct {
	Timeout time.Duration
	lookup  func(ctx context.Context, host string) ([]net.IPAddr, error)
}

// New returns a Resolver using net.DefaultResolver, with the default 5s
// timeout.
func New() *Resolver {
	return &Resolver{Timeout: DefaultTimeout, lookup: net.DefaultResolver.LookupIPAddr}
}

// Resolve looks up host and returns addresses ordered Happy-Eyeballs
// style: families alternate starting with IPv6, mixed-family order if
// both are available.
func (r *Resolver) Resolve(ctx context.Context, host string) ([]net.IPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IPAddr{{IP: ip}}, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		addrs []net.IPAddr
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		addrs, err := r.lookup(dctx, host)
		ch <- result{addrs: addrs, err: err}
	}()

	select {
	case <-ctx.Done():
		// Caller cancelled explicitly, distinct from our own timeout.
		return nil, herrs.Wrap(herrs.KindCancelled, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			if dctx.Err() != nil && ctx.Err() == nil {
				return nil, herrs.Newf(herrs.KindDNS, "dns resolution of %q timed out after %s", host, timeout)
			}
			return nil, herrs.Wrap(herrs.KindDNS, res.err)
		}
		return interleave(res.addrs), nil
	}
}

// interleave reorders addresses alternating IPv6/IPv4, IPv6 first, a
// simplified Happy-Eyeballs (RFC 8305) ordering.
func interleave(addrs []net.IPAddr) []net.IPAddr {
	var v6, v4 []net.IPAddr
	for _, a := range addrs {
		if a.IP.To4() == nil {
			v6 = append(v6, a)
		} else {
			v4 = append(v4, a)
		}
	}
	out := make([]net.IPAddr, 0, len(addrs))
	for i := 0; i < len(v6) || i < len(v4); i++ {
		if i < len(v6) {
			out = append(out, v6[i])
		}
		if i < len(v4) {
			out = append(out, v4[i])
		}
	}
	return out
}

// SortStable is exposed for tests asserting determinism of interleave for
// equal-length address lists.
func SortStable(addrs []net.IPAddr) {
	sort.SliceStable(addrs, func(i, j int) bool { return addrs[i].IP.String() < addrs[j].IP.String() })
}
