package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/iatifetch/internal/cache"
	"github.com/nao1215/iatifetch/internal/database"
	"github.com/nao1215/iatifetch/internal/fetch"
	"github.com/nao1215/iatifetch/internal/ingest"
	"github.com/nao1215/iatifetch/internal/model"
)

// newFakeRegistry serves a two-publisher registry with three resources,
// one of which is not XML.
func newFakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/api/3/action/organization_list", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "result": ["undp", "worldbank"]}`))
	})
	mux.HandleFunc("/api/3/action/package_search", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("fq") {
		case "organization:undp":
			fmt.Fprintf(w, `{"success": true, "result": {"results": [
				{"resources": [
					{"format": "IATI-XML", "url": %q},
					{"format": "CSV", "url": %q}
				]}
			]}}`, srv.URL+"/files/undp.xml", srv.URL+"/files/undp.csv")
		case "organization:worldbank":
			fmt.Fprintf(w, `{"success": true, "result": {"results": [
				{"resources": [{"format": "iati-xml", "url": %q}]}
			]}}`, srv.URL+"/files/worldbank.xml")
		default:
			_, _ = w.Write([]byte(`{"success": true, "result": {"results": []}}`))
		}
	})
	mux.HandleFunc("/files/undp.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<iati-activities>
			<iati-activity><iati-identifier>UNDP-1</iati-identifier></iati-activity>
		</iati-activities>`))
	})
	mux.HandleFunc("/files/worldbank.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<iati-activities>
			<iati-activity><iati-identifier>WB-1</iati-identifier></iati-activity>
			<iati-activity><iati-identifier>WB-2</iati-identifier></iati-activity>
		</iati-activities>`))
	})
	mux.HandleFunc("/codelists/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="Currency.xml">Currency</a>
			<a href="changelog.txt">changelog</a>
		</body></html>`))
	})
	mux.HandleFunc("/codelists/Currency.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<codelist name="Currency">
			<codelist-items>
				<codelist-item><code>USD</code><name><narrative>US Dollar</narrative></name></codelist-item>
				<codelist-item status="withdrawn"><code>DEM</code><name><narrative>Deutsche Mark</narrative></name></codelist-item>
			</codelist-items>
		</codelist>`))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestOrchestrator wires an Orchestrator with a fresh store, pipeline,
// and in-memory cache against the fake registry.
func newTestOrchestrator(t *testing.T) (*Orchestrator, *database.Store, *cache.Memory) {
	t.Helper()

	srv := newFakeRegistry(t)
	c := cache.NewMemory()

	store, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	fetcher := fetch.NewFetcher(c, fetch.WithHTTPClient(srv.Client()))
	scheduler := fetch.NewScheduler(fetcher, 4)
	pipeline := ingest.NewPipeline(store, fetcher)

	o := NewOrchestrator(fetcher, scheduler, c,
		WithStore(store),
		WithPipeline(pipeline),
		WithAPIRoot(srv.URL+"/api/3/"),
		WithCodelistIndexURL(srv.URL+"/codelists/"),
		WithRows(100),
	)
	return o, store, c
}

// TestCrawl tests the three-stage crawl end to end.
func TestCrawl(t *testing.T) {
	t.Parallel()

	o, store, c := newTestOrchestrator(t)
	ctx := context.Background()
	sum := model.NewSummary()

	if err := o.Crawl(ctx, CrawlOptions{}, sum); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	counts := sum.Snapshot()
	if counts.Handles != 2 {
		t.Errorf("expected 2 handles, got %d", counts.Handles)
	}
	if counts.XMLRequests != 2 {
		t.Errorf("expected 2 XML requests (CSV excluded, format matched case-insensitively), got %d", counts.XMLRequests)
	}
	if counts.Fetched != 2 {
		t.Errorf("expected 2 fetches, got %d", counts.Fetched)
	}
	if counts.SoftFailures != 0 || counts.HardFailures != 0 {
		t.Errorf("expected clean crawl, got %+v", counts)
	}

	// organisation_list + 2 searches + 2 XML files.
	if c.Len() != 5 {
		t.Errorf("expected 5 cached responses, got %d", c.Len())
	}

	handles, err := store.ListAbbreviations(ctx, true)
	if err != nil {
		t.Fatalf("failed to list handles: %v", err)
	}
	if len(handles) != 2 {
		t.Errorf("expected handle sync during crawl, got %d rows", len(handles))
	}
}

// TestCrawlExcludeCached tests that a second crawl skips cached resources.
func TestCrawlExcludeCached(t *testing.T) {
	t.Parallel()

	o, _, _ := newTestOrchestrator(t)
	ctx := context.Background()

	if err := o.Crawl(ctx, CrawlOptions{}, model.NewSummary()); err != nil {
		t.Fatalf("first crawl failed: %v", err)
	}

	sum := model.NewSummary()
	if err := o.Crawl(ctx, CrawlOptions{ExcludeCached: true}, sum); err != nil {
		t.Fatalf("second crawl failed: %v", err)
	}
	if got := sum.Snapshot().XMLRequests; got != 0 {
		t.Errorf("expected 0 XML requests after exclusion, got %d", got)
	}
}

// TestDispatch tests the command switch.
func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("ingest command stores activities", func(t *testing.T) {
		t.Parallel()

		o, store, _ := newTestOrchestrator(t)
		ctx := context.Background()
		sum := model.NewSummary()

		if err := o.Dispatch(ctx, Command{Kind: CommandIngest}, sum); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		total, err := store.CountActivities(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if total != 3 {
			t.Errorf("expected 3 stored activities, got %d", total)
		}
		if got := sum.Snapshot().Activities; got != 3 {
			t.Errorf("expected 3 counted activities, got %d", got)
		}
	})

	t.Run("refresh organisations syncs handles", func(t *testing.T) {
		t.Parallel()

		o, store, _ := newTestOrchestrator(t)
		ctx := context.Background()
		sum := model.NewSummary()

		if err := o.Dispatch(ctx, Command{Kind: CommandRefreshOrganisations}, sum); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		handles, err := store.ListAbbreviations(ctx, false)
		if err != nil {
			t.Fatalf("failed to list handles: %v", err)
		}
		if len(handles) != 2 {
			t.Errorf("expected 2 handles, got %d", len(handles))
		}
	})

	t.Run("unknown command kind is an error", func(t *testing.T) {
		t.Parallel()

		o, _, _ := newTestOrchestrator(t)
		if err := o.Dispatch(context.Background(), Command{Kind: CommandKind(99)}, model.NewSummary()); err == nil {
			t.Error("expected error for unknown command")
		}
	})
}

// TestRefreshCodelists tests the index crawl and wholesale replacement.
func TestRefreshCodelists(t *testing.T) {
	t.Parallel()

	o, store, _ := newTestOrchestrator(t)
	ctx := context.Background()
	sum := model.NewSummary()

	if err := o.RefreshCodelists(ctx, sum); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	counts := sum.Snapshot()
	if counts.Codelists != 1 || counts.CodelistItems != 2 {
		t.Errorf("unexpected counts: %+v", counts)
	}

	cl, err := store.GetCodelist(ctx, "Currency")
	if err != nil {
		t.Fatalf("failed to get codelist: %v", err)
	}
	if cl == nil || len(cl.Items) != 2 {
		t.Fatalf("expected 2 items, got %#v", cl)
	}

	var withdrawn int
	for _, item := range cl.Items {
		if item.Withdrawn {
			withdrawn++
			if item.Code != "DEM" {
				t.Errorf("expected DEM to be withdrawn, got %q", item.Code)
			}
		}
	}
	if withdrawn != 1 {
		t.Errorf("expected 1 withdrawn item, got %d", withdrawn)
	}
	for _, item := range cl.Items {
		if item.Code == "USD" && item.Name != "US Dollar" {
			t.Errorf("expected narrative name, got %q", item.Name)
		}
	}
}

// TestResourceDescriptorsMalformedBodies tests tolerance of unexpected
// search payload shapes.
func TestResourceDescriptorsMalformedBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{name: "nil body", body: nil},
		{name: "result is not an object", body: map[string]any{"result": "nope"}},
		{name: "results is not an array", body: map[string]any{"result": map[string]any{"results": 3}}},
		{name: "resource without url", body: map[string]any{"result": map[string]any{"results": []any{
			map[string]any{"resources": []any{map[string]any{"format": "IATI-XML"}}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resourceDescriptors("x", tt.body); len(got) != 0 {
				t.Errorf("expected no descriptors, got %#v", got)
			}
		})
	}
}
