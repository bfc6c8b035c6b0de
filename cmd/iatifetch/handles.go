package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/iatifetch/internal/registry"
)

// NewHandlesCmd creates the handles command.
func NewHandlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handles",
		Short: "Reconcile the stored publisher handles with the registry",
		Long: `Handles fetches the registry's organisation list and reconciles the
stored handle set against it without crawling any resources.

New handles are added, handles missing from the list are marked
withdrawn, and withdrawn handles that reappear are reinstated.`,
		Args: cobra.NoArgs,
		RunE: runHandlesCmd,
	}

	addCommonFlags(cmd)
	return cmd
}

// runHandlesCmd executes the handles command.
func runHandlesCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, registry.CommandRefreshOrganisations)
}
