package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/slotkit/core/formatter"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <class>",
	Short: "Show the effective slots of a class",
	Long: `Finalize a class and print its effective schema: every slot it has,
inherited ones first, with the merged options and the class that last
declared each slot.

Examples:
  slotkit schema circle
  slotkit schema circle -o yaml
  slotkit schema circle --source`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

var schemaSource bool

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolVar(&schemaSource, "source", false, "print the rendered class source instead")
}

func runSchema(cmd *cobra.Command, args []string) error {
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

	class, err := app.Registry().Class(args[0])
	if err != nil {
		f.FormatError(os.Stdout, err)
		return fmt.Errorf("class %s is not usable", args[0])
	}

	if schemaSource {
		fmt.Print(class.Source())
		return nil
	}
	return f.FormatSchema(os.Stdout, formatter.NewSchemaView(class.Schema()), formatter.FormatOptions{})
}
