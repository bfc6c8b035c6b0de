package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/iatifetch/internal/cache"
	"github.com/nao1215/iatifetch/internal/database"
	"github.com/nao1215/iatifetch/internal/fetch"
	"github.com/nao1215/iatifetch/internal/ingest"
	"github.com/nao1215/iatifetch/internal/model"
)

// Package sentinel errors.
var (
	// ErrNoStore is returned when an operation needs the relational store
	// and the orchestrator was built without one.
	ErrNoStore = errors.New("registry: operation requires a database store")

	// ErrNoPipeline is returned when ingestion is requested without a
	// configured pipeline.
	ErrNoPipeline = errors.New("registry: operation requires an ingestion pipeline")

	// ErrRegistryResponse is returned (wrapped) when a registry endpoint
	// answers with an unusable payload.
	ErrRegistryResponse = errors.New("registry: unusable registry response")
)

// xmlFormat is the registry's format marker for IATI XML resources.
// Publishers write it in every case mix.
const xmlFormat = "IATI-XML"

// Orchestrator drives crawls against the IATI registry.
type Orchestrator struct {
	fetcher   *fetch.Fetcher
	scheduler *fetch.Scheduler
	cache     cache.Cache
	store     *database.Store
	pipeline  *ingest.Pipeline
	logger    *slog.Logger
	apiRoot   string
	indexURL  string
	rows      int
	searchPar int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore attaches the relational store, enabling handle sync, codelist
// refresh, and request recording downstream.
func WithStore(s *database.Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithPipeline attaches the ingestion pipeline, enabling CommandIngest.
func WithPipeline(p *ingest.Pipeline) Option {
	return func(o *Orchestrator) {
		o.pipeline = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithAPIRoot overrides the registry API root. Used by tests and by
// registry mirrors.
func WithAPIRoot(root string) Option {
	return func(o *Orchestrator) {
		if root != "" {
			o.apiRoot = strings.TrimSuffix(root, "/") + "/"
		}
	}
}

// WithCodelistIndexURL overrides the codelist index location.
func WithCodelistIndexURL(url string) Option {
	return func(o *Orchestrator) {
		if url != "" {
			o.indexURL = url
		}
	}
}

// WithRows sets the page size requested from package_search. It must be
// large enough to return every resource of the biggest publisher in one
// page.
func WithRows(rows int) Option {
	return func(o *Orchestrator) {
		if rows > 0 {
			o.rows = rows
		}
	}
}

// NewOrchestrator creates an Orchestrator over a fetcher, a scheduler, and
// the shared response cache.
func NewOrchestrator(f *fetch.Fetcher, s *fetch.Scheduler, c cache.Cache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:   f,
		scheduler: s,
		cache:     c,
		logger:    slog.New(slog.DiscardHandler),
		apiRoot:   "https://iatiregistry.org/api/3/",
		indexURL:  "http://reference.iatistandard.org/203/codelists/downloads/clv3/xml/",
		rows:      1000,
		searchPar: 8,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CrawlOptions adjusts one crawl.
type CrawlOptions struct {
	// Refresh evicts cached responses before fetching.
	Refresh bool

	// ExcludeCached drops already-cached XML resources from the batch.
	ExcludeCached bool
}

// Handles fetches the registry's organisation list.
func (o *Orchestrator) Handles(ctx context.Context) ([]string, error) {
	desc := fetch.Descriptor{
		URL:      o.apiRoot + "action/organization_list",
		BodyType: fetch.BodyJSON,
	}
	result := o.fetcher.FetchOrCache(ctx, desc, fetch.Options{})
	if !result.OK() {
		return nil, fmt.Errorf("organisation list: %w", result.Reason)
	}

	body, ok := result.Body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: organisation list is %T", ErrRegistryResponse, result.Body)
	}
	raw, ok := body["result"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: organisation list has no result array", ErrRegistryResponse)
	}

	handles := make([]string, 0, len(raw))
	for _, v := range raw {
		if handle, ok := v.(string); ok && handle != "" {
			handles = append(handles, handle)
		}
	}
	return handles, nil
}

// SearchDescriptor returns the package_search request for one handle.
func (o *Orchestrator) SearchDescriptor(handle string) fetch.Descriptor {
	return fetch.Descriptor{
		URL: o.apiRoot + "action/package_search",
		Params: map[string]string{
			"fq":   "organization:" + handle,
			"rows": strconv.Itoa(o.rows),
		},
		BodyType: fetch.BodyJSON,
		Handle:   handle,
	}
}

// XMLDescriptors runs one package_search per handle and returns a
// descriptor for every resource whose format is IATI-XML. Search failures
// are counted on the summary and skipped; the other handles proceed.
func (o *Orchestrator) XMLDescriptors(ctx context.Context, handles []string, sum *model.Summary) ([]fetch.Descriptor, error) {
	var (
		mu    sync.Mutex
		descs []fetch.Descriptor
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.searchPar)

	for _, handle := range handles {
		eg.Go(func() error {
			result := o.fetcher.FetchOrCache(ctx, o.SearchDescriptor(handle), fetch.Options{})
			if !result.OK() {
				sum.Add(func(c *model.Counts) { c.SoftFailures++ })
				sum.AddFailure(fmt.Sprintf("package_search %s: %v", handle, result.Reason))
				return nil
			}

			found := resourceDescriptors(handle, result.Body)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			descs = append(descs, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return descs, nil
}

// resourceDescriptors extracts the IATI-XML resources from a decoded
// package_search response.
func resourceDescriptors(handle string, body any) []fetch.Descriptor {
	var out []fetch.Descriptor

	root, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	result, ok := root["result"].(map[string]any)
	if !ok {
		return nil
	}
	results, ok := result["results"].([]any)
	if !ok {
		return nil
	}

	for _, pkg := range results {
		pkgMap, ok := pkg.(map[string]any)
		if !ok {
			continue
		}
		resources, ok := pkgMap["resources"].([]any)
		if !ok {
			continue
		}
		for _, res := range resources {
			resMap, ok := res.(map[string]any)
			if !ok {
				continue
			}
			format, _ := resMap["format"].(string)
			url, _ := resMap["url"].(string)
			if url == "" || !strings.EqualFold(format, xmlFormat) {
				continue
			}
			out = append(out, fetch.Descriptor{
				URL:      url,
				BodyType: fetch.BodyXML,
				Handle:   handle,
			})
		}
	}
	return out
}

// FilterCached drops descriptors whose responses are already cached.
func (o *Orchestrator) FilterCached(ctx context.Context, descs []fetch.Descriptor) ([]fetch.Descriptor, error) {
	out := make([]fetch.Descriptor, 0, len(descs))
	for _, desc := range descs {
		cached, err := o.cache.Has(ctx, desc.Key())
		if err != nil {
			return nil, fmt.Errorf("check cache for %s: %w", desc.URL, err)
		}
		if !cached {
			out = append(out, desc)
		}
	}
	return out, nil
}

// collect runs the list and detail stages, reconciling the stored handle
// set along the way when a store is attached.
func (o *Orchestrator) collect(ctx context.Context, opts CrawlOptions, sum *model.Summary) ([]fetch.Descriptor, error) {
	handles, err := o.Handles(ctx)
	if err != nil {
		return nil, err
	}
	sum.Add(func(c *model.Counts) { c.Handles = len(handles) })
	o.logger.InfoContext(ctx, "organisation list fetched", "handles", len(handles))

	if o.store != nil {
		sync, err := o.store.SyncAbbreviations(ctx, handles)
		if err != nil {
			return nil, fmt.Errorf("sync handles: %w", err)
		}
		o.logger.InfoContext(ctx, "handles reconciled",
			"added", sync.Added, "withdrawn", sync.Withdrawn, "reinstated", sync.Reinstated)
	}

	descs, err := o.XMLDescriptors(ctx, handles, sum)
	if err != nil {
		return nil, err
	}

	if opts.ExcludeCached {
		filtered, err := o.FilterCached(ctx, descs)
		if err != nil {
			return nil, err
		}
		o.logger.InfoContext(ctx, "cached resources excluded",
			"before", len(descs), "after", len(filtered))
		descs = filtered
	}

	sum.Add(func(c *model.Counts) { c.XMLRequests = len(descs) })
	return descs, nil
}

// Crawl runs the full three-stage crawl: organisation list, package
// searches, and the bounded fan-out over the XML resources.
func (o *Orchestrator) Crawl(ctx context.Context, opts CrawlOptions, sum *model.Summary) error {
	descs, err := o.collect(ctx, opts, sum)
	if err != nil {
		return err
	}

	stats := o.scheduler.FetchAll(ctx, descs, fetch.Options{Refresh: opts.Refresh},
		func(desc fetch.Descriptor, result fetch.Result) {
			if result.OK() {
				return
			}
			sum.AddFailure(fmt.Sprintf("%s: %v", desc.URL, result.Reason))
		})

	sum.Add(func(c *model.Counts) {
		c.Fetched += int(stats.OK)
		c.SoftFailures += int(stats.Soft)
		c.HardFailures += int(stats.Hard)
	})
	return nil
}

// IngestCached recomputes the XML batch and ingests it through the
// pipeline. It is meant to run after a crawl, when every document is a
// cache hit; it works without one too, just slower.
func (o *Orchestrator) IngestCached(ctx context.Context, sum *model.Summary) error {
	if o.pipeline == nil {
		return ErrNoPipeline
	}

	// Collection counters were already taken by the crawl when this runs
	// as part of CommandIngest, so they land on a scratch summary.
	descs, err := o.collect(ctx, CrawlOptions{}, model.NewSummary())
	if err != nil {
		return err
	}
	return o.pipeline.IngestAll(ctx, descs, sum)
}

// RefreshOrganisations reconciles the stored handle set with the current
// organisation list without crawling resources.
func (o *Orchestrator) RefreshOrganisations(ctx context.Context, sum *model.Summary) error {
	if o.store == nil {
		return ErrNoStore
	}

	handles, err := o.Handles(ctx)
	if err != nil {
		return err
	}
	sum.Add(func(c *model.Counts) { c.Handles = len(handles) })

	sync, err := o.store.SyncAbbreviations(ctx, handles)
	if err != nil {
		return fmt.Errorf("sync handles: %w", err)
	}
	o.logger.InfoContext(ctx, "handles reconciled",
		"added", sync.Added, "withdrawn", sync.Withdrawn, "reinstated", sync.Reinstated)
	return nil
}
