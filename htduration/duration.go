// Package htduration wraps time.Duration with YAML/TOML/JSON-friendly
// marshalling ("5m30s" style strings instead of raw nanoseconds), so that
// ClientOptions, RetryPolicy, ConnectionPoolOptions, and H2Options read
// naturally from a config file.
//
// Grounded on nabbar-golib/duration (parse.go, encode.go, format.go).
package htduration

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that marshals as a Go duration string.
type Duration time.Duration

// Parse parses a Go duration string ("500ms", "5m30s", ...) into a Duration.
func Parse(s string) (Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("htduration: %w", err)
	}
	return Duration(d), nil
}

// MustParse panics if s does not parse; intended for package-level defaults.
func MustParse(s string) Duration {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the underlying time.Duration.
func (d Duration) Time() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
