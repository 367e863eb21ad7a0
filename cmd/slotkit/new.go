package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/slotkit/core/formatter"
)

var newCmd = &cobra.Command{
	Use:   "new <class> [slot=value...]",
	Short: "Construct an instance of a class",
	Long: `Construct an instance of a class from slot=value arguments and print it.

Values are parsed as YAML scalars or flow collections, so numbers, booleans
and lists keep their types. Quote a value to force a string.

Examples:
  slotkit new circle name=c1 radius=3
  slotkit new tagged tags='[a, b]'
  slotkit new point x='"7"' -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	holder, err := newHolder()
	if err != nil {
		return err
	}
	defer holder.Stop()

	f, err := outputFormatter()
	if err != nil {
		return err
	}

	app, err := loadApp(holder.Get())
	if err != nil {
		return err
	}

	inst, err := app.Registry().New(args[0], values)
	if err != nil {
		f.FormatError(os.Stdout, err)
		return fmt.Errorf("construction failed")
	}
	return f.FormatInstance(os.Stdout, formatter.NewInstanceView(inst), formatter.FormatOptions{})
}

// parseAssignments turns slot=value arguments into construction arguments.
// A slot given twice keeps the last value.
func parseAssignments(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q: expected slot=value", arg)
		}

		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("slot %s: parse value: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}
