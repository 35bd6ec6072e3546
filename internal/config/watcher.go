package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/eigenlog/eigenlog/internal/infra/confloader"
)

// Watcher watches the configuration file for changes and invokes a
// callback with the freshly reloaded Config. Used by eigenlog-server to
// hot-reload the API-key allowlist without a restart. It wraps
// confloader.Watcher, which reports raw changed paths, with the
// reload-and-unmarshal step specific to Config.
type Watcher struct {
	inner     *confloader.Watcher
	path      string
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	inner, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := inner.Watch(path); err != nil {
		_ = inner.Stop()
		return nil, err
	}

	w := &Watcher{inner: inner, path: path, logger: logger}
	inner.OnChange(w.handleChange)
	return w, nil
}

// OnChange registers a callback invoked with the newly loaded config each
// time the watched file changes and reloads successfully.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// StartAsync runs the underlying watcher's event loop in a goroutine.
func (w *Watcher) StartAsync() { w.inner.StartAsync() }

// Stop releases the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.inner.Stop()
}

func (w *Watcher) handleChange(changedPath string) {
	if filepath.Clean(changedPath) != filepath.Clean(w.path) {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)

	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(cfg)
	}
}
