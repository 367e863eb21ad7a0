package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		v, goVersion := buildVersion()
		if versionShort {
			fmt.Println(v)
			return
		}
		fmt.Printf("slotkit %s\n", v)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", buildDate)
		fmt.Printf("  go:      %s\n", goVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print the version number only")
}

// buildVersion falls back to the module version from build info for
// binaries installed with go install.
func buildVersion() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, "unknown"
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version, info.GoVersion
	}
	return version, info.GoVersion
}
