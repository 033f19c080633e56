// Package watcher reloads the configuration file while a recording runs.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lance13c/todrec/internal/config"
	"github.com/lance13c/todrec/internal/logging"
)

// ConfigWatcher monitors one config file and reports each valid new version
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	// Configuration
	debounce time.Duration

	// State
	mu         sync.RWMutex
	isWatching bool
	pendingAt  time.Time

	// Callbacks
	onChange func(cfg *config.Config)
}

// WatcherConfig configures the config watcher
type WatcherConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// DefaultConfig returns sensible defaults for config watching
func DefaultConfig() WatcherConfig {
	return WatcherConfig{DebounceMS: 250}
}

// NewConfigWatcher creates a watcher for the config file at path
func NewConfigWatcher(path string, cfg WatcherConfig) (*ConfigWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("no config file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if cfg.DebounceMS <= 0 {
		cfg = DefaultConfig()
	}

	return &ConfigWatcher{
		path:     filepath.Clean(path),
		watcher:  watcher,
		debounce: time.Duration(cfg.DebounceMS) * time.Millisecond,
	}, nil
}

// SetChangeCallback sets the callback for a reloaded config. It runs on the
// watcher goroutine.
func (cw *ConfigWatcher) SetChangeCallback(callback func(cfg *config.Config)) {
	cw.onChange = callback
}

// Start watches until ctx is done or Stop is called
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	if cw.isWatching {
		cw.mu.Unlock()
		return fmt.Errorf("watcher is already running")
	}
	cw.isWatching = true
	cw.mu.Unlock()

	// editors often replace the file, so watch its directory
	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		cw.Stop()
		return fmt.Errorf("failed to watch %s: %w", cw.path, err)
	}

	debounceTicker := time.NewTicker(cw.debounce)
	defer debounceTicker.Stop()

	logging.Info("watching %s for changes (debounce: %s)", cw.path, cw.debounce)

	for {
		select {
		case <-ctx.Done():
			cw.Stop()
			return ctx.Err()

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if cw.shouldIgnoreEvent(event) {
				continue
			}
			cw.mu.Lock()
			cw.pendingAt = time.Now()
			cw.mu.Unlock()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("config watcher error: %v", err)

		case <-debounceTicker.C:
			cw.processPending()
		}
	}
}

// Stop stops the watcher
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.isWatching {
		cw.watcher.Close()
		cw.isWatching = false
		logging.Debug("config watcher stopped")
	}
}

// IsWatching returns true if the watcher is currently active
func (cw *ConfigWatcher) IsWatching() bool {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.isWatching
}

// shouldIgnoreEvent keeps writes, creates and renames of the watched file
func (cw *ConfigWatcher) shouldIgnoreEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path {
		return true
	}
	return !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename)
}

// processPending reloads the file once it has been quiet for the debounce
// period. Invalid versions are logged and skipped.
func (cw *ConfigWatcher) processPending() {
	cw.mu.Lock()
	if cw.pendingAt.IsZero() || time.Since(cw.pendingAt) < cw.debounce {
		cw.mu.Unlock()
		return
	}
	cw.pendingAt = time.Time{}
	cw.mu.Unlock()

	cfg, err := config.LoadFile(cw.path)
	if err != nil {
		logging.Warn("ignoring config change: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		logging.Warn("ignoring config change: %v", err)
		return
	}

	logging.Info("reloaded %s", cw.path)
	if cw.onChange != nil {
		cw.onChange(cfg)
	}
}
