package pool

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/htcore/dnsresolve"
	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/tlsopts"
	"github.com/nabbar/htcore/tlswrap"
)

// Dialer creates a fresh Conn for an Identity: DNS resolution, TCP
// connect with a dispose-on-cancel pattern, and (for secure origins) TLS
// wrap advertising ALPN.
type Dialer struct {
	Resolver *dnsresolve.Resolver
	TLS      *tlswrap.Wrapper
	TLSOpts  *tlsopts.Config

	// ALPN is the protocol list advertised during the TLS handshake.
	// Defaults to tlswrap.DefaultALPN ({"h2", "http/1.1"}); set to
	// {"http/1.1"} to force every secure origin onto the HTTP/1.1 engine.
	ALPN []string

	// DialFunc overrides the raw TCP connect step; tests inject an
	// in-memory net.Conn pair here instead of hitting a real socket.
	DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewDialer returns a Dialer with a default Resolver and an Auto-selection
// TLS Wrapper advertising the default ALPN list.
func NewDialer() *Dialer {
	return &Dialer{
		Resolver: dnsresolve.New(),
		TLS:      tlswrap.New(tlswrap.Auto, nil),
		TLSOpts:  tlsopts.New(),
		ALPN:     tlswrap.DefaultALPN,
	}
}

// Dial resolves, connects, and (if id.Secure) TLS-wraps a new connection
// to id.
func (d *Dialer) Dial(ctx context.Context, id Identity) (*Conn, error) {
	addrs, err := d.Resolver.Resolve(ctx, id.Host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, addr := range addrs {
		raw, err := d.dialOne(ctx, net.JoinHostPort(addr.IP.String(), id.Port))
		if err != nil {
			lastErr = err
			continue
		}

		// Recheck cancellation to guard the race window between connect
		// completing and this goroutine observing it.
		if ctx.Err() != nil {
			_ = raw.Close()
			return nil, herrs.Wrap(herrs.KindCancelled, ctx.Err())
		}

		stream := net.Conn(raw)
		var tlsVersion uint16
		var negotiatedALPN string
		if id.Secure {
			offered := d.ALPN
			if offered == nil {
				offered = tlswrap.DefaultALPN
			}
			res, err := d.TLS.Wrap(ctx, raw, id.Host, offered, d.TLSOpts)
			if err != nil {
				_ = raw.Close()
				return nil, err
			}
			stream = res.Conn
			tlsVersion = res.TLSVersion
			negotiatedALPN = res.NegotiatedALPN
		}

		c := NewConn(id, raw, stream)
		c.TLSVersion = tlsVersion
		c.ALPN = negotiatedALPN
		c.NegotiatedHTTP2 = negotiatedALPN == "h2"
		return c, nil
	}

	if lastErr == nil {
		lastErr = herrs.Newf(herrs.KindDNS, "no addresses resolved for %s", id.Host)
	}
	return nil, lastErr
}

func (d *Dialer) dialOne(ctx context.Context, addr string) (net.Conn, error) {
	dial := d.DialFunc
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, herrs.Wrap(herrs.KindCancelled, ctx.Err())
		}
		return nil, herrs.Wrap(herrs.KindNetwork, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
		_ = tcp.SetKeepAlive(true)
		_ = tcp.SetKeepAlivePeriod(30 * time.Second)
	}
	return conn, nil
}
