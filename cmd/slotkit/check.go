package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artpar/slotkit/adapters/metrics"
	"github.com/artpar/slotkit/bootstrap"
	"github.com/artpar/slotkit/config"
	"github.com/artpar/slotkit/core/events"
	"github.com/artpar/slotkit/core/formatter"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Load and finalize every class definition",
	Long: `Load the class definition directory and finalize every class.

Reports each class with its ancestor, slot count and, for classes that
failed, the reason. Exits non-zero when any class fails.

With --watch, definitions are checked again whenever a definition file or
the config file changes, or on SIGHUP.

Examples:
  slotkit check
  slotkit check ./classes --watch
  slotkit check -o json`,
	Args: cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			os.Setenv("SLOTKIT_CLASSES_DIR", args[0])
		}
	},
	RunE: runCheck,
}

var (
	checkWatch   bool
	checkEvents  bool
	checkMetrics bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "check again when definitions change")
	checkCmd.Flags().BoolVarP(&checkEvents, "events", "e", false, "print class lifecycle events as they happen")
	checkCmd.Flags().BoolVar(&checkMetrics, "metrics", false, "print engine metrics after each check")
}

func runCheck(cmd *cobra.Command, args []string) error {
	holder, err := newHolder()
	if err != nil {
		return err
	}
	defer holder.Stop()

	cfg := *holder.Get()
	// Every class is finalized so failures surface now.
	cfg.Engine.Finalize = config.FinalizeCheckpoint
	if checkMetrics {
		cfg.Metrics.Enabled = true
	}

	app, err := bootstrap.New(&cfg, os.Stderr)
	if err != nil {
		return err
	}
	if checkEvents {
		app.Bus.Subscribe("class.*", printEvent)
	}

	f, err := outputFormatter()
	if err != nil {
		return err
	}

	failed := report(app, f, app.Load())
	if !checkWatch {
		if failed {
			return fmt.Errorf("check failed")
		}
		return nil
	}

	holder.OnChange(func(next *config.Config) {
		c := *next
		c.Engine.Finalize = config.FinalizeCheckpoint
		fmt.Println()
		report(app, f, app.Reload(&c))
	})
	if err := holder.Watch(); err != nil {
		return err
	}
	holder.WatchSignals()

	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Classes.Dir)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}

// report prints the outcome of one load and returns whether anything failed.
func report(app *bootstrap.App, f formatter.Formatter, loadErr error) bool {
	if loadErr != nil && !errors.Is(loadErr, bootstrap.ErrClassesFailed) {
		fmt.Printf("  %s Definitions loaded\n", crossMark)
		f.FormatError(os.Stdout, loadErr)
		return true
	}

	table := f.Name() == "table"
	summaries := app.Summaries()
	if !table {
		f.FormatClasses(os.Stdout, summaries, formatter.FormatOptions{})
	} else {
		fmt.Printf("Checking %s...\n\n", app.Config().Classes.Dir)
		fmt.Printf("  %s Definitions loaded\n", checkMark)
		for _, s := range summaries {
			if s.Error != "" {
				fmt.Printf("  %s %s\n", crossMark, s.Class)
				fmt.Printf("      Error: %s\n", s.Error)
				continue
			}
			line := fmt.Sprintf("%s (%d slots)", s.Class, s.Slots)
			if s.Parent != "" {
				line = fmt.Sprintf("%s extends %s (%d slots)", s.Class, s.Parent, s.Slots)
			}
			fmt.Printf("  %s %s\n", checkMark, line)
		}
		fmt.Println()
	}

	if checkMetrics && app.Gatherer != nil {
		printMetrics(app)
	}

	if loadErr != nil {
		if table {
			fmt.Println("Some classes failed to finalize.")
		}
		return true
	}
	if table {
		fmt.Printf("All %d classes are valid.\n", len(summaries))
	}
	return false
}

func printMetrics(app *bootstrap.App) {
	samples, err := metrics.Summarize(app.Gatherer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gather metrics: %v\n", err)
		return
	}
	fmt.Println("Metrics:")
	for _, s := range samples {
		fmt.Printf("  %-50s %g\n", s.Name, s.Value)
	}
	fmt.Println()
}

func printEvent(_ context.Context, e events.Event) error {
	switch {
	case e.Err != nil:
		fmt.Fprintf(os.Stderr, "  [%s] %s: %v\n", e.Name, e.Class, e.Err)
	default:
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.Name, e.Class)
	}
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
