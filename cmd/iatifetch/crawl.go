package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/iatifetch/internal/registry"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch the registry's XML resources into the cache",
		Long: `Crawl walks the IATI registry and caches every published XML resource.

The crawl runs in three stages: the organisation list, one package search
per publisher, and a bounded fan-out over the XML resources the searches
point at. Failed fetches are reported, never retried mid-run, and never
stop the rest of the batch.

Examples:
  # Full crawl with defaults
  iatifetch crawl

  # Only fetch what is not already cached, using a Redis cache
  iatifetch crawl --exclude-cached --redis 127.0.0.1:6379

  # Force everything fresh
  iatifetch crawl --refresh

  # Pace requests for a gentle overnight run
  iatifetch crawl --concurrency 5 --delay 500ms`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addCommonFlags(cmd)
	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, registry.CommandCrawl)
}
