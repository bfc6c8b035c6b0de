package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/iatifetch/internal/config"
	"github.com/nao1215/iatifetch/internal/registry"
)

// NewCodelistsCmd creates the codelists command.
func NewCodelistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codelists",
		Short: "Refresh the IATI reference vocabularies",
		Long: `Codelists downloads the IATI codelist index, follows every XML link on
it, and replaces the stored vocabularies wholesale.

The XML downloads are canonical; the JSON variant has historically
dropped attributes such as withdrawal markers.

Examples:
  # Refresh all codelists
  iatifetch codelists

  # Refresh from a mirror
  iatifetch codelists --index https://mirror.example.org/codelists/`,
		Args: cobra.NoArgs,
		RunE: runCodelistsCmd,
	}

	addCommonFlags(cmd)
	cmd.Flags().String("index", config.DefaultCodelistIndexURL,
		"Codelist index URL")
	return cmd
}

// runCodelistsCmd executes the codelists command.
func runCodelistsCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, registry.CommandRefreshCodelists)
}
