// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Finalization modes.
const (
	// FinalizeLazy finalizes each class on its first construction.
	FinalizeLazy = "lazy"
	// FinalizeCheckpoint finalizes every class right after definitions load.
	FinalizeCheckpoint = "checkpoint"
)

// Config is the root configuration structure.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Engine  EngineConfig  `yaml:"engine"`
	Classes ClassesConfig `yaml:"classes"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"` // metric name prefix (default: slotkit)
}

// EngineConfig configures the class engine.
type EngineConfig struct {
	StrictArgs  bool   `yaml:"strict_args"` // reject construction args that name no slot
	Diagnostics bool   `yaml:"diagnostics"` // log rendered class source at finalization
	Finalize    string `yaml:"finalize"`    // "lazy" or "checkpoint"
}

// ClassesConfig locates class definition files.
type ClassesConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	SLOTKIT_LOG_LEVEL         - Log level: debug, info, warn, error (default: warn)
//	SLOTKIT_LOG_FORMAT        - Log format: json or console (default: console)
//	SLOTKIT_METRICS_ENABLED   - Collect Prometheus metrics (default: false)
//	SLOTKIT_METRICS_NAMESPACE - Metric name prefix (default: slotkit)
//	SLOTKIT_STRICT_ARGS       - Reject unknown construction arguments (default: false)
//	SLOTKIT_DIAGNOSTICS       - Log rendered class source (default: false)
//	SLOTKIT_FINALIZE          - lazy or checkpoint (default: checkpoint)
//	SLOTKIT_CLASSES_DIR       - Class definition directory (default: classes)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads path if it exists and falls back to environment
// variables otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies SLOTKIT_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Logging configuration
	if v := os.Getenv("SLOTKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SLOTKIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("SLOTKIT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("SLOTKIT_METRICS_NAMESPACE"); v != "" {
		cfg.Metrics.Namespace = v
	}

	// Engine configuration
	if v := os.Getenv("SLOTKIT_STRICT_ARGS"); v != "" {
		cfg.Engine.StrictArgs = parseBool(v)
	}
	if v := os.Getenv("SLOTKIT_DIAGNOSTICS"); v != "" {
		cfg.Engine.Diagnostics = parseBool(v)
	}
	if v := os.Getenv("SLOTKIT_FINALIZE"); v != "" {
		cfg.Engine.Finalize = v
	}

	// Classes configuration
	if v := os.Getenv("SLOTKIT_CLASSES_DIR"); v != "" {
		cfg.Classes.Dir = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "slotkit"
	}

	if cfg.Engine.Finalize == "" {
		cfg.Engine.Finalize = FinalizeCheckpoint
	}

	if cfg.Classes.Dir == "" {
		cfg.Classes.Dir = "classes"
	}
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	validModes := map[string]bool{FinalizeLazy: true, FinalizeCheckpoint: true}
	if !validModes[cfg.Engine.Finalize] {
		return fmt.Errorf("engine.finalize must be %q or %q, got %q", FinalizeLazy, FinalizeCheckpoint, cfg.Engine.Finalize)
	}

	if strings.ContainsAny(cfg.Metrics.Namespace, " -.") {
		return fmt.Errorf("metrics.namespace %q must not contain spaces, dashes or dots", cfg.Metrics.Namespace)
	}

	return nil
}
