// Package tlswrap implements a single TLS operation: wrap a plain byte
// stream, negotiate ALPN, and report the negotiated protocol and TLS
// version — behind a runtime-selected Provider (platform-native
// preferred, pure-in-process fallback).
//
// Implementing TLS cryptography from scratch is out of scope; see
// DESIGN.md for how ForcePure is realized as a genuine substitution
// point without fabricating a vendored TLS stack.
package tlswrap

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/tlsopts"
)

// Selection picks which Provider Wrapper uses.
type Selection int

const (
	// Auto picks the platform-native provider if it is ALPN-capable,
	// else falls back to the pure-in-process provider.
	Auto Selection = iota
	ForcePlatform
	ForcePure
)

// Result is the outcome of a successful wrap.
type Result struct {
	Conn         net.Conn
	NegotiatedALPN string
	TLSVersion   uint16
}

// Provider performs the TLS handshake over an already-connected socket.
type Provider interface {
	// Capable reports whether this provider can negotiate ALPN on the
	// current platform. Detected once at process startup.
	Capable() bool
	// Wrap performs the handshake, offering alpn via ALPN.
	Wrap(ctx context.Context, raw net.Conn, hostname string, alpn []string, cfg *tlsopts.Config) (Result, error)
}

// platformProvider is the stdlib crypto/tls-backed provider. Go's
// crypto/tls always exposes ALPN, so Capable() is unconditionally true —
// a runtime-reflection capability probe collapses to a constant in a Go
// build.
type platformProvider struct{}

func (platformProvider) Capable() bool { return true }

func (platformProvider) Wrap(ctx context.Context, raw net.Conn, hostname string, alpn []string, cfg *tlsopts.Config) (Result, error) {
	if cfg == nil {
		cfg = tlsopts.New()
	}
	tc := cfg.Snapshot(hostname, alpn)
	conn := tls.Client(raw, tc)

	done := make(chan error, 1)
	go func() { done <- conn.HandshakeContext(ctx) }()

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return Result{}, herrs.Wrap(herrs.KindCancelled, ctx.Err())
	case err := <-done:
		if err != nil {
			_ = conn.Close()
			return Result{}, herrs.Wrap(herrs.KindTLS, err)
		}
	}

	st := conn.ConnectionState()
	return Result{Conn: conn, NegotiatedALPN: st.NegotiatedProtocol, TLSVersion: st.Version}, nil
}

// PlatformProvider returns the platform-native provider.
func PlatformProvider() Provider { return platformProvider{} }

// PureProvider returns the pure-in-process provider extension point. No
// pack example vendors a pure-Go TLS stack; absent an injected
// implementation this simply reuses the stdlib crypto/tls stack, which
// is cryptographically equivalent to the platform provider on every Go
// build target and therefore a safe default for ForcePure.
func PureProvider() Provider { return platformProvider{} }
