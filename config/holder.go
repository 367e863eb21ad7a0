package config

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to configuration and reloads it when
// the config file or a class definition file changes.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder creates a config holder and loads the initial configuration.
// When path is empty or does not exist yet, configuration comes from the
// environment; creating the file later is picked up by Watch.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	h := &Holder{
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		h.path = absPath
	}

	cfg, err := h.load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	h.config = cfg

	return h, nil
}

func (h *Holder) load() (*Config, error) {
	return LoadWithFallback(h.path)
}

// Get returns the current configuration (thread-safe).
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Reload reloads the configuration and notifies listeners. Listeners are
// notified even if nothing in the configuration changed, since class
// definition files may have. On error the old configuration is kept.
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading configuration")

	newCfg, err := h.load()
	if err != nil {
		h.logger.Error().Err(err).Msg("config reload failed, keeping old config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.config
	h.config = newCfg
	listeners := append(([]func(*Config))(nil), h.onChange...)
	h.mu.Unlock()

	h.logChanges(oldCfg, newCfg)

	for _, fn := range listeners {
		fn(newCfg)
	}

	h.logger.Info().Msg("configuration reloaded successfully")
	return nil
}

// OnChange registers a callback to be called after every reload.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Watch starts watching the config file and every directory under the
// configured class directory. Writes to the config file or to a definition
// file trigger a reload.
func (h *Holder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch directories rather than files: editors often save atomically.
	if h.path != "" {
		if err := watcher.Add(filepath.Dir(h.path)); err != nil {
			watcher.Close()
			return fmt.Errorf("watch config directory: %w", err)
		}
	}

	dir := h.Get().Classes.Dir
	if err := h.watchTree(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch classes directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().
		Str("config", h.path).
		Str("classes", dir).
		Msg("watching for changes")
	return nil
}

// watchTree adds dir and every directory below it to the watcher.
func (h *Holder) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return h.watcher.Add(path)
		}
		return nil
	})
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading config")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()

	h.logger.Info().Msg("listening for SIGHUP to reload config")
}

// Stop stops watching for file changes and signals. It is safe to call more
// than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && h.inClassesDir(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := h.watchTree(event.Name); err != nil {
						h.logger.Error().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					} else {
						h.logger.Debug().Str("dir", event.Name).Msg("watching new directory")
					}
					if err := h.Reload(); err != nil {
						h.logger.Error().Err(err).Msg("file watch reload failed")
					}
					continue
				}
			}
			if !h.relevant(event.Name) {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("watched file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

// inClassesDir reports whether name lies below the configured class directory.
func (h *Holder) inClassesDir(name string) bool {
	dir, err := filepath.Abs(h.Get().Classes.Dir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// relevant reports whether a change to name should trigger a reload.
func (h *Holder) relevant(name string) bool {
	if h.path != "" && filepath.Clean(name) == h.path {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (h *Holder) logChanges(old, new *Config) {
	if old.Logging.Level != new.Logging.Level {
		h.logger.Info().
			Str("old", old.Logging.Level).
			Str("new", new.Logging.Level).
			Msg("log level changed")
	}

	if old.Classes.Dir != new.Classes.Dir {
		h.logger.Warn().
			Str("old", old.Classes.Dir).
			Str("new", new.Classes.Dir).
			Msg("classes directory changed; restart to watch the new one")
	}

	if old.Engine != new.Engine {
		h.logger.Info().
			Bool("strict_args", new.Engine.StrictArgs).
			Bool("diagnostics", new.Engine.Diagnostics).
			Str("finalize", new.Engine.Finalize).
			Msg("engine settings changed")
	}
}

// ReloadableFields returns which fields take effect on reload.
func ReloadableFields() []string {
	return []string{
		"engine.strict_args",
		"engine.diagnostics",
		"engine.finalize",
		"logging.level",
	}
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return []string{
		"classes.dir",
		"logging.format",
		"metrics.enabled",
		"metrics.namespace",
	}
}
