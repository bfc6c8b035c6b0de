package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags. Empty values fall back to the build
// info embedded in the binary.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildVersion resolves the reported version, commit hash, and build
// date, preferring ldflags values over the embedded build info.
func buildVersion() (string, string, string) {
	v, c, d := version, commit, date
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if c == "" {
					c = s.Value
				}
			case "vcs.time":
				if d == "" {
					d = s.Value
				}
			}
		}
	}
	if v == "" {
		v = "(devel)"
	}
	if len(c) > 7 {
		c = c[:7]
	}
	if c == "" {
		c = "unknown"
	}
	if d == "" {
		d = "unknown"
	}
	return v, c, d
}

// getVersion returns the version string shown by cobra's --version flag.
func getVersion() string {
	v, _, _ := buildVersion()
	return v
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			v, c, d := buildVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "iatifetch version %s (commit %s, built %s)\n", v, c, d)
		},
	}
}
