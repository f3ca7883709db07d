// Package htconfig loads ClientOptions from defaults, environment, and an
// optional YAML/TOML file via spf13/viper, with optional fsnotify-driven
// hot-reload that atomically swaps the loaded snapshot.
//
// Grounded on nabbar-golib/config/components/httpcli (Init -> Start ->
// Reload -> Stop component lifecycle) and nabbar-golib/httpcli/options.go
// (the Options struct with json/yaml/toml/mapstructure tags, validated
// with go-playground/validator).
package htconfig

import (
	"os"
	"time"

	"github.com/nabbar/htcore/h2"
	"github.com/nabbar/htcore/htduration"
	"github.com/nabbar/htcore/pipeline"
	"github.com/nabbar/htcore/pool"
)

// TLSOptions configures the TLS wrapper used for secure origins.
type TLSOptions struct {
	InsecureSkipVerify bool     `json:"insecure_skip_verify" yaml:"insecure_skip_verify" toml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	ServerName         string   `json:"server_name,omitempty" yaml:"server_name,omitempty" toml:"server_name,omitempty" mapstructure:"server_name,omitempty"`
	RootCAFiles        []string `json:"root_ca_files,omitempty" yaml:"root_ca_files,omitempty" toml:"root_ca_files,omitempty" mapstructure:"root_ca_files,omitempty"`
	VersionMin         uint16   `json:"version_min,omitempty" yaml:"version_min,omitempty" toml:"version_min,omitempty" mapstructure:"version_min,omitempty"`
	VersionMax         uint16   `json:"version_max,omitempty" yaml:"version_max,omitempty" toml:"version_max,omitempty" mapstructure:"version_max,omitempty"`
}

// LoadRootCAs reads every file in RootCAFiles and returns their raw
// contents, in order, for tlsopts.Config.AddRootCA.
func (o TLSOptions) LoadRootCAs() ([][]byte, error) {
	out := make([][]byte, 0, len(o.RootCAFiles))
	for _, path := range o.RootCAFiles {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ConnectionPoolOptions mirrors pool.Pool's tunables.
type ConnectionPoolOptions struct {
	MaxPerHost     int64               `json:"max_per_host" yaml:"max_per_host" toml:"max_per_host" mapstructure:"max_per_host" validate:"gte=1"`
	MaxIdlePerHost int                 `json:"max_idle_per_host" yaml:"max_idle_per_host" toml:"max_idle_per_host" mapstructure:"max_idle_per_host" validate:"gte=0"`
	IdleTimeout    htduration.Duration `json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout" mapstructure:"idle_timeout"`
}

// H2Options toggles HTTP/2 negotiation and carries the SETTINGS this
// engine advertises plus its two local guards (decode-bomb and response
// body cap), all configurable with RFC-bound validation. Disabled forces
// every secure origin onto the HTTP/1.1 engine by dropping "h2" from the
// advertised ALPN list.
type H2Options struct {
	Disabled bool `json:"disabled" yaml:"disabled" toml:"disabled" mapstructure:"disabled"`

	// EnablePush is advertised as SETTINGS_ENABLE_PUSH (RFC 7540 §6.5.2).
	EnablePush bool `json:"enable_push" yaml:"enable_push" toml:"enable_push" mapstructure:"enable_push"`

	// MaxConcurrentStreams is advertised as SETTINGS_MAX_CONCURRENT_STREAMS.
	MaxConcurrentStreams uint32 `json:"max_concurrent_streams" yaml:"max_concurrent_streams" toml:"max_concurrent_streams" mapstructure:"max_concurrent_streams" validate:"gte=0"`

	// InitialWindowSize is advertised as SETTINGS_INITIAL_WINDOW_SIZE,
	// bounded to the 31-bit flow-control window RFC 7540 §6.9.1 allows.
	InitialWindowSize uint32 `json:"initial_window_size" yaml:"initial_window_size" toml:"initial_window_size" mapstructure:"initial_window_size" validate:"lte=2147483647"`

	// MaxFrameSize is advertised as SETTINGS_MAX_FRAME_SIZE, bounded to
	// the RFC 7540 §6.5.2 legal range.
	MaxFrameSize uint32 `json:"max_frame_size" yaml:"max_frame_size" toml:"max_frame_size" mapstructure:"max_frame_size" validate:"gte=16384,lte=16777215"`

	// MaxHeaderListSize is advertised as SETTINGS_MAX_HEADER_LIST_SIZE,
	// the header-list size this engine claims it will accept.
	MaxHeaderListSize uint32 `json:"max_header_list_size" yaml:"max_header_list_size" toml:"max_header_list_size" mapstructure:"max_header_list_size" validate:"gt=0"`

	// MaxHeaderListBytes is the local HPACK decode-bomb guard, enforced
	// regardless of what the peer does with MaxHeaderListSize.
	MaxHeaderListBytes uint32 `json:"max_header_list_bytes" yaml:"max_header_list_bytes" toml:"max_header_list_bytes" mapstructure:"max_header_list_bytes" validate:"gt=0"`

	// MaxResponseBodyBytes caps the accumulated DATA payload for a single
	// response; zero means unlimited.
	MaxResponseBodyBytes int64 `json:"max_response_body_bytes" yaml:"max_response_body_bytes" toml:"max_response_body_bytes" mapstructure:"max_response_body_bytes" validate:"gte=0"`
}

// ToOptions converts H2Options into the h2.Options Dial consumes.
func (o H2Options) ToOptions() h2.Options {
	return h2.Options{
		EnablePush:           o.EnablePush,
		MaxConcurrentStreams: o.MaxConcurrentStreams,
		InitialWindowSize:    o.InitialWindowSize,
		MaxFrameSize:         o.MaxFrameSize,
		MaxHeaderListSize:    o.MaxHeaderListSize,
		MaxHeaderListBytes:   o.MaxHeaderListBytes,
		MaxResponseBodyBytes: o.MaxResponseBodyBytes,
	}
}

// RetryOptions mirrors pipeline.RetryPolicy with config-file-friendly
// Duration fields.
type RetryOptions struct {
	MaxAttempts    int                 `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	BaseDelay      htduration.Duration `json:"base_delay" yaml:"base_delay" toml:"base_delay" mapstructure:"base_delay"`
	MaxDelay       htduration.Duration `json:"max_delay" yaml:"max_delay" toml:"max_delay" mapstructure:"max_delay"`
	IdempotentOnly bool                `json:"idempotent_only" yaml:"idempotent_only" toml:"idempotent_only" mapstructure:"idempotent_only"`
}

// ToPolicy converts RetryOptions into the pipeline.RetryPolicy the Retry
// middleware consumes.
func (o RetryOptions) ToPolicy() pipeline.RetryPolicy {
	return pipeline.RetryPolicy{
		MaxAttempts:    o.MaxAttempts,
		BaseDelay:      o.BaseDelay.Time(),
		MaxDelay:       o.MaxDelay.Time(),
		IdempotentOnly: o.IdempotentOnly,
	}
}

// ClientOptions is the full configuration surface a Client is built from,
// loadable in whole or in part from a YAML/TOML file.
type ClientOptions struct {
	BaseURL          string              `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty" mapstructure:"base_url,omitempty" validate:"omitempty,url"`
	DefaultTimeout   htduration.Duration `json:"default_timeout" yaml:"default_timeout" toml:"default_timeout" mapstructure:"default_timeout"`
	DefaultHeaders   map[string]string   `json:"default_headers,omitempty" yaml:"default_headers,omitempty" toml:"default_headers,omitempty" mapstructure:"default_headers,omitempty"`
	TLS              TLSOptions          `json:"tls" yaml:"tls" toml:"tls" mapstructure:"tls"`
	Pool             ConnectionPoolOptions `json:"connection_pool" yaml:"connection_pool" toml:"connection_pool" mapstructure:"connection_pool"`
	H2               H2Options           `json:"h2" yaml:"h2" toml:"h2" mapstructure:"h2"`
	Retry            RetryOptions        `json:"retry" yaml:"retry" toml:"retry" mapstructure:"retry"`
	// CacheFreshFor is how long a newly stored cache entry stays fresh;
	// only meaningful when a Client is constructed with a non-nil
	// htcache.Store. Zero makes every response revalidate-only.
	CacheFreshFor    htduration.Duration `json:"cache_fresh_for" yaml:"cache_fresh_for" toml:"cache_fresh_for" mapstructure:"cache_fresh_for"`
	DisposeTransport bool                `json:"dispose_transport" yaml:"dispose_transport" toml:"dispose_transport" mapstructure:"dispose_transport"`
}

// DefaultClientOptions mirrors the package-level defaults already used by
// pool.New and pipeline.DefaultRetryPolicy, so a zero-config Loader
// behaves exactly like constructing those types directly.
func DefaultClientOptions() ClientOptions {
	retry := pipeline.DefaultRetryPolicy()
	h2defaults := h2.DefaultOptions()
	return ClientOptions{
		DefaultTimeout: htduration.Duration(30 * time.Second),
		Pool: ConnectionPoolOptions{
			MaxPerHost:     pool.DefaultMaxPerHost,
			MaxIdlePerHost: pool.DefaultMaxIdlePerHost,
			IdleTimeout:    htduration.Duration(pool.DefaultIdleTimeout),
		},
		H2: H2Options{
			EnablePush:           h2defaults.EnablePush,
			MaxConcurrentStreams: h2defaults.MaxConcurrentStreams,
			InitialWindowSize:    h2defaults.InitialWindowSize,
			MaxFrameSize:         h2defaults.MaxFrameSize,
			MaxHeaderListSize:    h2defaults.MaxHeaderListSize,
			MaxHeaderListBytes:   h2defaults.MaxHeaderListBytes,
			MaxResponseBodyBytes: h2defaults.MaxResponseBodyBytes,
		},
		Retry: RetryOptions{
			MaxAttempts:    retry.MaxAttempts,
			BaseDelay:      htduration.Duration(retry.BaseDelay),
			MaxDelay:       htduration.Duration(retry.MaxDelay),
			IdempotentOnly: retry.IdempotentOnly,
		},
	}
}
