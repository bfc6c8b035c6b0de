package registry

import (
	"context"
	"fmt"

	"github.com/nao1215/iatifetch/internal/model"
)

// CommandKind identifies one orchestrator operation.
type CommandKind int

// Orchestrator operations.
const (
	// CommandCrawl fetches the registry's XML resources into the cache.
	CommandCrawl CommandKind = iota

	// CommandIngest crawls and then ingests the fetched documents.
	CommandIngest

	// CommandRefreshOrganisations reconciles the stored handle set with
	// the registry's organisation list.
	CommandRefreshOrganisations

	// CommandRefreshCodelists refreshes the reference vocabularies from
	// the codelist index.
	CommandRefreshCodelists
)

// String returns the command name for logs.
func (k CommandKind) String() string {
	switch k {
	case CommandCrawl:
		return "crawl"
	case CommandIngest:
		return "ingest"
	case CommandRefreshOrganisations:
		return "refresh-organisations"
	case CommandRefreshCodelists:
		return "refresh-codelists"
	default:
		return "unknown"
	}
}

// Command is one tagged orchestrator operation with its parameters.
type Command struct {
	// Kind selects the operation.
	Kind CommandKind

	// Crawl carries the parameters for CommandCrawl and CommandIngest.
	Crawl CrawlOptions
}

// Dispatch runs a command against the orchestrator. Unknown kinds are an
// error rather than a silent no-op.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd Command, sum *model.Summary) error {
	switch cmd.Kind {
	case CommandCrawl:
		return o.Crawl(ctx, cmd.Crawl, sum)
	case CommandIngest:
		if err := o.Crawl(ctx, cmd.Crawl, sum); err != nil {
			return err
		}
		return o.IngestCached(ctx, sum)
	case CommandRefreshOrganisations:
		return o.RefreshOrganisations(ctx, sum)
	case CommandRefreshCodelists:
		return o.RefreshCodelists(ctx, sum)
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}
