package htconfig

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/nabbar/htcore/htduration"
)

// durationHookFunc decodes a config string into htduration.Duration via
// htduration.Parse, so "5m30s"-style values work the same way whether
// they came from a YAML file, a TOML file, or an environment variable.
func durationHookFunc() mapstructure.DecodeHookFunc {
	durationType := reflect.TypeOf(htduration.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return htduration.Parse(s)
	}
}

// Loader reads ClientOptions from defaults, environment variables
// (prefixed HTCLIENT_), and an optional config file, via a dedicated
// viper.Viper instance.
type Loader struct {
	v   *viper.Viper
	key string
}

// NewLoader returns a Loader that reads from the given viper key path
// ("" to unmarshal the whole file at the root).
func NewLoader(key string) *Loader {
	v := viper.New()
	v.SetEnvPrefix("HTCLIENT")
	v.AutomaticEnv()
	return &Loader{v: v, key: key}
}

// SetConfigFile points the Loader at an explicit file path; its
// extension selects the format (yaml, toml, json, ...).
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// Viper exposes the underlying viper.Viper for callers that need to add
// config paths or bind flags before calling Load.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the configured file (if any), unmarshals into
// ClientOptions starting from DefaultClientOptions, and validates the
// result.
func (l *Loader) Load() (ClientOptions, error) {
	opts := DefaultClientOptions()

	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return opts, err
		}
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))

	var err error
	if l.key != "" {
		err = l.v.UnmarshalKey(l.key, &opts, decodeHook)
	} else {
		err = l.v.Unmarshal(&opts, decodeHook)
	}
	if err != nil {
		return opts, err
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
