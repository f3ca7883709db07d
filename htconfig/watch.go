package htconfig

import (
	"github.com/fsnotify/fsnotify"

	"github.com/nabbar/htcore/htatomic"
)

// OnReloadFunc is notified after a successful hot-reload with the new
// ClientOptions; it receives the reload error instead when validation or
// decoding of the changed file failed (the previous snapshot is kept).
type OnReloadFunc func(opts ClientOptions, err error)

// Watcher holds the live ClientOptions snapshot and keeps it current via
// viper's fsnotify-backed file watch. Readers call Current(); nothing
// blocks waiting for a reload.
type Watcher struct {
	loader  *Loader
	current *htatomic.Value[ClientOptions]
	onReload OnReloadFunc
}

// NewWatcher performs an initial Load and starts watching the loader's
// config file for changes. onReload may be nil.
func NewWatcher(loader *Loader, onReload OnReloadFunc) (*Watcher, error) {
	opts, err := loader.Load()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		loader:   loader,
		current:  htatomic.NewValueWithDefault(opts),
		onReload: onReload,
	}

	loader.Viper().OnConfigChange(func(_ fsnotify.Event) {
		w.reload()
	})
	loader.Viper().WatchConfig()

	return w, nil
}

func (w *Watcher) reload() {
	opts, err := w.loader.Load()
	if err != nil {
		if w.onReload != nil {
			w.onReload(ClientOptions{}, err)
		}
		return
	}
	w.current.Store(opts)
	if w.onReload != nil {
		w.onReload(opts, nil)
	}
}

// Current returns the most recently loaded, validated ClientOptions.
func (w *Watcher) Current() ClientOptions {
	return w.current.Load()
}
