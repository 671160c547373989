package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/skimdata/skim/pkg/filter"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, build, and engine information",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Skim v%s\n", version)
	fmt.Fprintf(out, "High-throughput delimited text toolkit\n\n")
	fmt.Fprintf(out, "Commit:     %s\n", commit)
	fmt.Fprintf(out, "Built:      %s\n", date)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Grep:       %s\n", filter.EngineInfo())
	return nil
}
