package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/slotkit/bootstrap"
	"github.com/artpar/slotkit/config"
	"github.com/artpar/slotkit/core/formatter"
)

var (
	// Global flags
	cfgFile      string
	classesDir   string
	logLevel     string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slotkit",
	Short: "Declare, check and instantiate slot-based classes",
	Long: `slotkit loads class definitions from YAML files, resolves each class
against its ancestors and builds instances that validate their slots.

Quick start:
  slotkit check classes/          # Finalize every class and report failures
  slotkit schema circle           # Show the effective slots of a class
  slotkit new circle radius=3     # Construct an instance

Configuration is read from slotkit.yaml when present, then SLOTKIT_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Flags override config through the environment.
		if classesDir != "" {
			os.Setenv("SLOTKIT_CLASSES_DIR", classesDir)
		}
		if logLevel != "" {
			os.Setenv("SLOTKIT_LOG_LEVEL", logLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "slotkit.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&classesDir, "classes", "", "class definition directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (table, json, yaml; default table)")
}

// newHolder loads configuration the way every command does.
func newHolder() (*config.Holder, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return config.NewHolder(cfgFile, logger)
}

// loadApp creates the application and loads the class directory. Classes
// that fail to finalize are not an error here; callers inspect them.
func loadApp(cfg *config.Config) (*bootstrap.App, error) {
	app, err := bootstrap.New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	if err := app.Load(); err != nil && !errors.Is(err, bootstrap.ErrClassesFailed) {
		return nil, err
	}
	return app, nil
}

// outputFormatter returns the formatter named by --output, or the default.
func outputFormatter() (formatter.Formatter, error) {
	if outputFormat == "" {
		return formatter.Default(), nil
	}
	f, ok := formatter.Get(outputFormat)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", outputFormat, formatter.List())
	}
	return f, nil
}
