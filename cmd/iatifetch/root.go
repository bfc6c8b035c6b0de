// Package main provides the entry point for the iatifetch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for iatifetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iatifetch",
		Short: "Crawl and ingest IATI registry data",
		Long: `iatifetch crawls the IATI registry, caches every fetched document, and
ingests the published XML into a local SQLite database.

A crawl walks the registry in three stages: the organisation list, one
package search per publisher, and the published XML resources. Every
response is cached under a canonical request hash, so repeated runs only
touch the network for what changed.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewCodelistsCmd())
	cmd.AddCommand(NewHandlesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
