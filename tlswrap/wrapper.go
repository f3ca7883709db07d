package tlswrap

import (
	"context"
	"net"

	"github.com/nabbar/htcore/tlsopts"
)

// DefaultALPN is the protocol preference list advertised during the TLS
// handshake, h2 first so servers that support it negotiate it.
var DefaultALPN = []string{"h2", "http/1.1"}

// Wrapper selects a Provider per Selection and exposes the single wrap
// operation that turns a raw connection into a TLS-protected one.
type Wrapper struct {
	sel      Selection
	platform Provider
	pure     Provider
}

// New builds a Wrapper. A nil pure provider falls back to PureProvider().
func New(sel Selection, pure Provider) *Wrapper {
	if pure == nil {
		pure = PureProvider()
	}
	return &Wrapper{sel: sel, platform: PlatformProvider(), pure: pure}
}

func (w *Wrapper) provider() Provider {
	switch w.sel {
	case ForcePlatform:
		return w.platform
	case ForcePure:
		return w.pure
	default: // Auto
		if w.platform.Capable() {
			return w.platform
		}
		return w.pure
	}
}

// Wrap performs the handshake over raw, advertising alpn, and returns the
// negotiated protocol/version alongside the wrapped stream.
func (w *Wrapper) Wrap(ctx context.Context, raw net.Conn, hostname string, alpn []string, cfg *tlsopts.Config) (Result, error) {
	if len(alpn) == 0 {
		alpn = DefaultALPN
	}
	return w.provider().Wrap(ctx, raw, hostname, alpn, cfg)
}
