package h2

import "golang.org/x/net/http2"

// Options holds the per-connection HTTP/2 tunables: the SETTINGS values
// this engine advertises to the peer, plus two local guards the peer
// never sees (the HPACK decode-bomb guard and the response body cap).
// Every field mirrors a value from RFC 7540 §6.5.2 or an explicit local
// resource bound; the zero value is not meaningful on its own, use
// DefaultOptions as the starting point.
type Options struct {
	// EnablePush is advertised as SETTINGS_ENABLE_PUSH. This engine never
	// accepts a pushed stream regardless of value; it is surfaced purely
	// so the peer's own push attempts can be told to stop.
	EnablePush bool

	// MaxConcurrentStreams is advertised as SETTINGS_MAX_CONCURRENT_STREAMS,
	// the ceiling this engine accepts for the peer's own stream fan-in.
	MaxConcurrentStreams uint32

	// InitialWindowSize is advertised as SETTINGS_INITIAL_WINDOW_SIZE and
	// seeds both the connection-level and every new stream's receive
	// window.
	InitialWindowSize uint32

	// MaxFrameSize is advertised as SETTINGS_MAX_FRAME_SIZE and bounds the
	// largest frame payload this engine will read, and the largest DATA
	// payload it writes in one frame. A request's header block is written
	// as a single HEADERS frame, without CONTINUATION splitting.
	MaxFrameSize uint32

	// MaxHeaderListSize is advertised as SETTINGS_MAX_HEADER_LIST_SIZE,
	// telling the peer the largest decoded header list (name+value bytes,
	// RFC 7540 §6.5.2) this engine claims it will accept.
	MaxHeaderListSize uint32

	// MaxHeaderListBytes is enforced locally, independent of whatever the
	// peer does with MaxHeaderListSize: it caps the HPACK decoder's
	// accepted string length and the Framer's own MetaHeadersFrame
	// assembly size, so an oversized HEADERS block is truncated before
	// the full block is ever materialized.
	MaxHeaderListBytes uint32

	// MaxResponseBodyBytes caps the accumulated DATA payload for a single
	// response. Zero means unlimited.
	MaxResponseBodyBytes int64
}

// DefaultOptions returns the RFC-bound defaults this engine dials with
// when the caller supplies no Options.
func DefaultOptions() Options {
	return Options{
		EnablePush:           true,
		MaxConcurrentStreams: 100,
		InitialWindowSize:    65535,
		MaxFrameSize:         16384,
		MaxHeaderListSize:    65536,
		MaxHeaderListBytes:   262144,
		MaxResponseBodyBytes: 100 << 20,
	}
}

// localSettings builds the SETTINGS frame payload this engine sends on
// connection establishment from opts.
func localSettings(opts Options) []http2.Setting {
	push := uint32(0)
	if opts.EnablePush {
		push = 1
	}
	return []http2.Setting{
		{ID: http2.SettingEnablePush, Val: push},
		{ID: http2.SettingMaxConcurrentStreams, Val: opts.MaxConcurrentStreams},
		{ID: http2.SettingInitialWindowSize, Val: opts.InitialWindowSize},
		{ID: http2.SettingMaxFrameSize, Val: opts.MaxFrameSize},
		{ID: http2.SettingMaxHeaderListSize, Val: opts.MaxHeaderListSize},
	}
}
