package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/iatifetch/internal/database"
	"github.com/nao1215/iatifetch/internal/fetch"
	"github.com/nao1215/iatifetch/internal/model"
	"github.com/nao1215/iatifetch/internal/xmlmap"
)

// Paths of the ingestable elements inside a normalized document.
const (
	organisationPath = "iati-organisations.iati-organisation"
	activityPath     = "iati-activities.iati-activity"
)

// Pipeline ingests fetched XML documents into the relational store.
type Pipeline struct {
	store                *database.Store
	fetcher              *fetch.Fetcher
	logger               *slog.Logger
	includeActivities    bool
	includeOrganisations bool
	update               bool
	defaultLang          string
	batchLimit           int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the structured logger.
func WithPipelineLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithActivities toggles ingestion of iati-activity elements.
func WithActivities(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.includeActivities = enabled
	}
}

// WithOrganisations toggles ingestion of iati-organisation elements.
func WithOrganisations(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.includeOrganisations = enabled
	}
}

// WithUpdate toggles overwriting of existing rows. Overwriting is the
// default; WithUpdate(false) makes an existing row win, turning
// re-ingestion into a no-op.
func WithUpdate(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.update = enabled
	}
}

// WithDefaultLanguage sets the fallback language tag for narratives.
func WithDefaultLanguage(lang string) PipelineOption {
	return func(p *Pipeline) {
		if lang != "" {
			p.defaultLang = lang
		}
	}
}

// WithBatchLimit bounds how many documents IngestAll processes at once.
func WithBatchLimit(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchLimit = n
		}
	}
}

// NewPipeline creates a Pipeline. Both element kinds are ingested and
// re-ingestion overwrites stored rows unless options narrow the
// selection.
func NewPipeline(store *database.Store, fetcher *fetch.Fetcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:                store,
		fetcher:              fetcher,
		logger:               slog.New(slog.DiscardHandler),
		includeActivities:    true,
		includeOrganisations: true,
		update:               true,
		defaultLang:          "en",
		batchLimit:           4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest fetches one document (normally a cache hit after a crawl) and
// ingests its elements. Fetch failures and recoverable format errors are
// counted on the summary; only fatal format errors and storage errors are
// returned.
func (p *Pipeline) Ingest(ctx context.Context, desc fetch.Descriptor, sum *model.Summary) error {
	result := p.fetcher.FetchOrCache(ctx, desc, fetch.Options{})
	switch result.Outcome {
	case fetch.OutcomeSoftFailure:
		sum.Add(func(c *model.Counts) { c.SoftFailures++ })
		sum.AddFailure(fmt.Sprintf("%s: %v", desc.URL, result.Reason))
		return nil
	case fetch.OutcomeHardFailure:
		sum.Add(func(c *model.Counts) { c.HardFailures++ })
		sum.AddFailure(fmt.Sprintf("%s: %v", desc.URL, result.Reason))
		return nil
	}
	sum.Add(func(c *model.Counts) { c.Fetched++ })

	doc := xmlmap.ToMap(result.Text())
	if len(doc) == 0 {
		sum.Add(func(c *model.Counts) { c.Rejected++ })
		sum.AddFailure(fmt.Sprintf("%s: not parseable as XML", desc.URL))
		return nil
	}

	if p.includeOrganisations {
		for _, element := range xmlmap.Match(organisationPath, doc) {
			if err := p.ingestOrganisation(ctx, desc, element, sum); err != nil {
				if IsFatalFormat(err) {
					return fmt.Errorf("ingest %s: %w", desc.URL, err)
				}
				p.reject(ctx, desc, err, sum)
				continue
			}
		}
	}
	if p.includeActivities {
		for _, element := range xmlmap.Match(activityPath, doc) {
			if err := p.ingestActivity(ctx, element, sum); err != nil {
				if IsFatalFormat(err) {
					return fmt.Errorf("ingest %s: %w", desc.URL, err)
				}
				p.reject(ctx, desc, err, sum)
				continue
			}
		}
	}
	return nil
}

// IngestAll ingests every descriptor with bounded parallelism. A fatal
// error on one document cancels the rest of the batch.
func (p *Pipeline) IngestAll(ctx context.Context, descs []fetch.Descriptor, sum *model.Summary) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.batchLimit)

	for _, desc := range descs {
		eg.Go(func() error {
			return p.Ingest(ctx, desc, sum)
		})
	}
	return eg.Wait()
}

// reject counts a recoverable format error and moves on.
func (p *Pipeline) reject(ctx context.Context, desc fetch.Descriptor, err error, sum *model.Summary) {
	sum.Add(func(c *model.Counts) { c.Rejected++ })
	sum.AddFailure(fmt.Sprintf("%s: %v", desc.URL, err))
	p.logger.InfoContext(ctx, "element rejected", "url", desc.URL, "error", err)
}

// ingestActivity validates, dissects, and stores one iati-activity element.
func (p *Pipeline) ingestActivity(ctx context.Context, element any, sum *model.Summary) error {
	m, ok := element.(map[string]any)
	if !ok {
		return &FormatError{Element: "iati-activity", Reason: fmt.Sprintf("expected a mapping, got %T", element)}
	}

	identifier := scalarText(m["iati-identifier"])
	if identifier == "" {
		return &FormatError{Element: "iati-activity", Reason: "missing iati-identifier"}
	}

	children := popChildren(identifier, m)
	narratives := collectNarratives(identifier, m, p.defaultLang)

	act := &model.Activity{Identifier: identifier, Element: m}
	written, err := p.store.SaveActivity(ctx, act, children, narratives, p.update)
	if err != nil {
		return fmt.Errorf("save activity %s: %w", identifier, err)
	}
	if !written {
		p.logger.DebugContext(ctx, "activity already stored", "identifier", identifier)
		return nil
	}

	sum.Add(func(c *model.Counts) {
		c.Activities++
		c.Narratives += len(narratives)
		c.Children += len(children)
	})
	return nil
}

// ingestOrganisation validates and stores one iati-organisation element.
// Elements that turn out to be activities in disguise are redirected; an
// element with neither identifier is a fatal format error because the
// registry claimed this file holds organisation data.
func (p *Pipeline) ingestOrganisation(ctx context.Context, desc fetch.Descriptor, element any, sum *model.Summary) error {
	m, ok := element.(map[string]any)
	if !ok {
		return &FormatError{Element: "iati-organisation", Reason: fmt.Sprintf("expected a mapping, got %T", element)}
	}

	identifier := scalarText(m["organisation-identifier"])
	if identifier == "" {
		if scalarText(m["iati-identifier"]) != "" {
			return p.ingestActivity(ctx, element, sum)
		}
		return &FormatError{
			Element: "iati-organisation",
			Reason:  "missing both organisation-identifier and iati-identifier",
			Fatal:   true,
		}
	}

	org := &model.Organisation{
		Identifier:   identifier,
		Abbreviation: desc.Handle,
		Element:      m,
	}
	created, err := p.store.UpsertOrganisation(ctx, org, p.update)
	if err != nil {
		return fmt.Errorf("save organisation %s: %w", identifier, err)
	}
	if created {
		sum.Add(func(c *model.Counts) { c.Organisations++ })
	}
	return nil
}

// popChildren removes the recurring child collections from an activity
// element and returns them as rows.
func popChildren(activityID string, element map[string]any) []model.ActivityChild {
	var out []model.ActivityChild
	for _, kind := range model.ChildKinds {
		key := string(kind)
		seq, ok := element[key].([]any)
		if !ok {
			continue
		}
		for _, item := range seq {
			out = append(out, model.ActivityChild{
				ActivityID: activityID,
				Kind:       kind,
				Element:    item,
			})
		}
		delete(element, key)
	}
	return out
}

// scalarText extracts the textual content of a normalized element that may
// be a bare string or a map with a #text key.
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		s, _ := t["#text"].(string)
		return strings.TrimSpace(s)
	default:
		return ""
	}
}
