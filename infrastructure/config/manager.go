package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"http-logging/domain/port"
)

// DefaultDebounce is how long Watch waits for a burst of file events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Manager holds the current configuration and reloads it when the file changes.
type Manager struct {
	configPath string
	debounce   time.Duration
	logger     port.Logger

	mu     sync.RWMutex
	config *Config

	watching bool
}

// NewManager loads path and returns a manager for it.
func NewManager(path string, logger port.Logger) (*Manager, error) {
	if logger == nil {
		logger = &port.NopLogger{}
	}
	cm := &Manager{configPath: path, debounce: DefaultDebounce, logger: logger}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

// NewManagerForTest wraps an in-memory configuration.
func NewManagerForTest(cfg *Config) *Manager {
	return &Manager{config: cfg, debounce: DefaultDebounce, logger: &port.NopLogger{}}
}

// SetDebounce overrides DefaultDebounce. Must be called before Watch.
func (cm *Manager) SetDebounce(d time.Duration) {
	cm.debounce = d
}

// SetLogger replaces the logger given to NewManager. Must be called before Watch.
func (cm *Manager) SetLogger(logger port.Logger) {
	if logger == nil {
		logger = &port.NopLogger{}
	}
	cm.logger = logger
}

func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// Reload re-reads the file. A file that fails to load or validate leaves the
// current configuration in place.
func (cm *Manager) Reload() (*Config, error) {
	cfg, err := Load(cm.configPath)
	if err != nil {
		return nil, err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return cfg, nil
}

// Watch blocks until ctx is done, reloading the configuration whenever the
// file changes and passing each successfully loaded config to onChange.
//
// The parent directory is watched rather than the file, so editors that
// save by rename-and-replace are still seen.
func (cm *Manager) Watch(ctx context.Context, onChange func(*Config)) error {
	cm.mu.Lock()
	if cm.watching {
		cm.mu.Unlock()
		return errors.New("config watcher already running")
	}
	cm.watching = true
	cm.mu.Unlock()
	defer func() {
		cm.mu.Lock()
		cm.watching = false
		cm.mu.Unlock()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(cm.configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		cfg, err := cm.Reload()
		if err != nil {
			cm.logger.Warn("config reload failed, keeping previous config", port.Error(err))
			return
		}
		cm.logger.Info("config reloaded", port.String("path", cm.configPath))
		if onChange != nil {
			onChange(cfg)
		}
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cm.debounce, reload)
			timerMu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			cm.logger.Error("config watcher error", port.Error(err))
		}
	}
}
