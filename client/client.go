// Package client is the public API: Client construction from
// htconfig.ClientOptions plus optional collaborators (cookie jar, cache
// store, metrics collector, monitor, logger), and a fluent per-request
// builder.
//
// Grounded on nabbar-golib/httpcli's cli.go façade (a single struct
// hiding pool/transport/options behind a small verb-oriented surface),
// adapted to this module's pipeline.Handler chain instead of an
// *http.Client.
package client

import (
	"context"
	"sort"

	"github.com/nabbar/htcore/cookiejar"
	"github.com/nabbar/htcore/htcache"
	"github.com/nabbar/htcore/htconfig"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htlog"
	"github.com/nabbar/htcore/htmetrics"
	"github.com/nabbar/htcore/htmonitor"
	"github.com/nabbar/htcore/htreq"
	"github.com/nabbar/htcore/pipeline"
	"github.com/nabbar/htcore/pool"
	"github.com/nabbar/htcore/tlswrap"
	"github.com/nabbar/htcore/transport"
)

// Config assembles a Client: Options carries every bounded/tunable
// setting, the remaining fields wire optional collaborators and
// extension points. Nil fields simply leave the corresponding middleware
// out of the chain.
type Config struct {
	Options htconfig.ClientOptions

	// Jar, Cache, Metrics, Monitor, Logger enable their respective
	// middleware when non-nil.
	Jar     *cookiejar.Jar
	Cache   *htcache.Store
	Metrics *htmetrics.Collector
	Monitor *htmonitor.Monitor
	Logger  *htlog.Logger

	// Middleware is appended, in order, as the innermost layers before
	// the transport itself — useful for request/response transforms this
	// package has no opinion about.
	Middleware []pipeline.Middleware

	// TransportOverride replaces the pool-backed transport.Transport
	// entirely (the extension point spec.md §6 names); a record/replay
	// Player or Recorder is a typical value.
	TransportOverride pipeline.Handler
}

// Client is a constructed pipeline plus the resources it owns: a pool.Pool
// (and the transport.Transport wrapping it) when no TransportOverride was
// given.
type Client struct {
	baseURL   string
	handler   pipeline.Handler
	transport *transport.Transport
	dispose   bool
}

// New builds a Client from cfg. The middleware chain is assembled once,
// outermost first: Logging, Metrics, Monitor, Cookies, Cache, Retry,
// Timeout, DefaultHeaders, then any caller-supplied Middleware, wrapping
// the transport (or TransportOverride) as the innermost Handler.
func New(cfg Config) (*Client, error) {
	opts := cfg.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var inner pipeline.Handler
	var tr *transport.Transport

	if cfg.TransportOverride != nil {
		inner = cfg.TransportOverride
	} else {
		d := pool.NewDialer()
		if opts.H2.Disabled {
			d.ALPN = []string{"http/1.1"}
		} else {
			d.ALPN = tlswrap.DefaultALPN
		}
		d.TLSOpts.SetInsecureSkipVerify(opts.TLS.InsecureSkipVerify)
		if opts.TLS.ServerName != "" {
			d.TLSOpts.SetServerName(opts.TLS.ServerName)
		}
		if opts.TLS.VersionMin != 0 {
			d.TLSOpts.SetVersionMin(opts.TLS.VersionMin)
		}
		if opts.TLS.VersionMax != 0 {
			d.TLSOpts.SetVersionMax(opts.TLS.VersionMax)
		}
		rootCAs, err := opts.TLS.LoadRootCAs()
		if err != nil {
			return nil, err
		}
		for _, pemBytes := range rootCAs {
			d.TLSOpts.AddRootCA(pemBytes)
		}

		p := pool.New(d)
		if opts.Pool.MaxPerHost > 0 {
			p.MaxPerHost = opts.Pool.MaxPerHost
		}
		if opts.Pool.MaxIdlePerHost > 0 {
			p.MaxIdlePerHost = opts.Pool.MaxIdlePerHost
		}
		if opts.Pool.IdleTimeout.Time() > 0 {
			p.IdleTimeout = opts.Pool.IdleTimeout.Time()
		}

		tr = transport.NewWithH2Options(p, opts.H2.ToOptions())
		inner = func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			return tr.RoundTrip(ctx, req)
		}
	}

	mw := buildMiddleware(opts, cfg)
	handler := pipeline.Chain(inner, mw...)

	return &Client{
		baseURL:   opts.BaseURL,
		handler:   handler,
		transport: tr,
		dispose:   opts.DisposeTransport,
	}, nil
}

func buildMiddleware(opts htconfig.ClientOptions, cfg Config) []pipeline.Middleware {
	var mw []pipeline.Middleware

	if cfg.Logger != nil {
		mw = append(mw, pipeline.Logging(cfg.Logger))
	}
	if cfg.Metrics != nil {
		mw = append(mw, pipeline.Metrics(cfg.Metrics))
	}
	if cfg.Monitor != nil {
		mw = append(mw, pipeline.Monitor(cfg.Monitor))
	}
	if cfg.Jar != nil {
		mw = append(mw, pipeline.Cookies(cfg.Jar))
	}
	if cfg.Cache != nil {
		mw = append(mw, pipeline.Cache(cfg.Cache, opts.CacheFreshFor.Time()))
	}
	if opts.Retry.MaxAttempts > 1 {
		mw = append(mw, pipeline.Retry(opts.Retry.ToPolicy()))
	}
	if opts.DefaultTimeout.Time() > 0 {
		mw = append(mw, pipeline.Timeout(opts.DefaultTimeout.Time()))
	}

	names := make([]string, 0, len(opts.DefaultHeaders))
	for name := range opts.DefaultHeaders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mw = append(mw, pipeline.DefaultHeaders(name, opts.DefaultHeaders[name], pipeline.SkipIfPresent))
	}

	mw = append(mw, cfg.Middleware...)
	return mw
}

// Dispose releases transport resources. Idempotent; safe to call even
// when a TransportOverride was used (a no-op in that case, since the
// override owns its own lifecycle).
func (c *Client) Dispose() {
	if c.transport != nil && c.dispose {
		c.transport.Dispose()
	}
}
