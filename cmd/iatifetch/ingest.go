package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/iatifetch/internal/config"
	"github.com/nao1215/iatifetch/internal/registry"
)

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Crawl the registry and ingest the XML into the database",
		Long: `Ingest crawls the registry and then loads every cached XML document
into the local SQLite database.

Activities and organisations are stored by identifier. Narrative text and
the recurring child collections (transactions, budgets, results, document
links) are split into rows of their own. Re-ingesting an identifier
replaces its stored record and child rows wholesale; use --no-update to
keep what is already stored.

Examples:
  # Crawl and ingest everything
  iatifetch ingest

  # Re-crawl with fresh data, keeping records already in the database
  iatifetch ingest --refresh --no-update

  # Organisation files only
  iatifetch ingest --no-activities`,
		Args: cobra.NoArgs,
		RunE: runIngestCmd,
	}

	addCommonFlags(cmd)
	cmd.Flags().Bool("no-update", false,
		"Keep stored records instead of overwriting them")
	cmd.Flags().Bool("no-activities", false,
		"Skip iati-activity elements")
	cmd.Flags().Bool("no-organisations", false,
		"Skip iati-organisation elements")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Fallback narrative language tag")
	return cmd
}

// runIngestCmd executes the ingest command.
func runIngestCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, registry.CommandIngest)
}
