// Package bootstrap wires the engine from configuration: logger, metrics,
// event bus and a registry loaded from the class definition directory.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/artpar/slotkit/adapters/metrics"
	"github.com/artpar/slotkit/config"
	"github.com/artpar/slotkit/core/events"
	"github.com/artpar/slotkit/core/formatter"
	"github.com/artpar/slotkit/core/registry"
	"github.com/artpar/slotkit/ports"
)

// ErrClassesFailed is returned by Load when definitions loaded but at least
// one class failed to finalize.
var ErrClassesFailed = errors.New("classes failed to finalize")

// App holds the wired engine. The registry is replaced on every Load.
type App struct {
	Logger  zerolog.Logger
	Bus     *events.Bus
	Metrics *metrics.Collector

	// Gatherer exposes the metrics registry; nil when metrics are disabled.
	Gatherer prometheus.Gatherer

	mu       sync.RWMutex
	cfg      *config.Config
	registry *registry.Registry
}

// New creates the application from cfg. Logs go to w.
func New(cfg *config.Config, w io.Writer) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	logger := NewLogger(cfg.Logging, w)

	a := &App{
		Logger: logger,
		Bus:    events.NewBus(logger),
		cfg:    cfg,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		a.Metrics = metrics.NewWithRegistry(reg, cfg.Metrics.Namespace)
		a.Gatherer = reg
		logger.Debug().Str("namespace", cfg.Metrics.Namespace).Msg("prometheus metrics enabled")
	}

	a.registry = a.newRegistry(cfg)
	return a, nil
}

// NewLogger builds a logger from the logging config and sets the global
// level. An unparseable level falls back to info.
func NewLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(w).With().Timestamp().Logger()
}

func (a *App) newRegistry(cfg *config.Config) *registry.Registry {
	var observer ports.Observer = ports.NopObserver{}
	if a.Metrics != nil {
		observer = a.Metrics
	}

	opts := []registry.Option{
		registry.WithLogger(a.Logger),
		registry.WithObserver(observer),
		registry.WithBus(a.Bus),
		registry.WithStrictArgs(cfg.Engine.StrictArgs),
	}
	if cfg.Engine.Diagnostics {
		logger := a.Logger
		opts = append(opts, registry.WithDiagnostics(func(class, source string) {
			logger.Info().Str("class", class).Str("source", source).Msg("class compiled")
		}))
	}
	return registry.New(opts...)
}

// Config returns the configuration the current registry was built from.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Registry returns the current registry.
func (a *App) Registry() *registry.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry
}

// Load parses the class directory into a fresh registry and installs it.
// A parse or declaration error keeps the previous registry. In checkpoint
// mode every class is finalized; finalization failures are returned but the
// new registry is still installed so the failures can be inspected.
func (a *App) Load() error {
	return a.load(a.Config())
}

// Reload applies a new configuration and loads the class directory again.
// Only settings listed in config.ReloadableFields take effect.
func (a *App) Reload(cfg *config.Config) error {
	old := a.Config()
	next := *old
	next.Engine = cfg.Engine
	next.Logging.Level = cfg.Logging.Level

	if level, err := zerolog.ParseLevel(next.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	err := a.load(&next)
	if a.Metrics != nil {
		a.Metrics.RecordReload(err)
	}
	return err
}

func (a *App) load(cfg *config.Config) error {
	reg := a.newRegistry(cfg)

	if err := reg.LoadDir(cfg.Classes.Dir); err != nil {
		a.Logger.Error().Err(err).Str("dir", cfg.Classes.Dir).Msg("failed to load class definitions")
		return fmt.Errorf("load classes: %w", err)
	}

	var finalizeErr error
	if cfg.Engine.Finalize == config.FinalizeCheckpoint {
		finalizeErr = reg.Checkpoint()
	}

	a.mu.Lock()
	a.cfg = cfg
	a.registry = reg
	a.mu.Unlock()

	a.Logger.Info().
		Str("dir", cfg.Classes.Dir).
		Int("classes", len(reg.Classes())).
		Str("finalize", cfg.Engine.Finalize).
		Msg("class definitions loaded")

	if finalizeErr != nil {
		return fmt.Errorf("%w: %w", ErrClassesFailed, finalizeErr)
	}
	return nil
}

// Summaries describes every class in the current registry, sorted by name.
// Classes that are still declaring are reported without finalizing them.
func (a *App) Summaries() []formatter.ClassSummary {
	reg := a.Registry()

	names := reg.Classes()
	out := make([]formatter.ClassSummary, 0, len(names))
	for _, name := range names {
		state, _ := reg.State(name)
		s := formatter.ClassSummary{
			Class:  name,
			Parent: reg.Parent(name),
			State:  state.String(),
			Source: reg.Source(name),
		}
		if state == registry.Failed {
			if err := reg.Err(name); err != nil {
				s.Error = err.Error()
			}
		} else if cs, err := reg.Resolve(name); err == nil {
			s.Slots = len(cs.Order)
		} else {
			s.Error = err.Error()
		}
		out = append(out, s)
	}
	return out
}
