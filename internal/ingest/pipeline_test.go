package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/iatifetch/internal/cache"
	"github.com/nao1215/iatifetch/internal/database"
	"github.com/nao1215/iatifetch/internal/fetch"
	"github.com/nao1215/iatifetch/internal/model"
)

// newTestPipeline wires a Pipeline to a fresh store and a server that
// answers every request with body.
func newTestPipeline(t *testing.T, body string, opts ...PipelineOption) (*Pipeline, *database.Store, fetch.Descriptor) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	store, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	fetcher := fetch.NewFetcher(cache.NewMemory(), fetch.WithHTTPClient(srv.Client()))
	return NewPipeline(store, fetcher, opts...), store, fetch.Descriptor{URL: srv.URL, BodyType: fetch.BodyXML}
}

// TestIngestActivities tests the full activity path: validation, child
// popping, narrative hoisting, and storage.
func TestIngestActivities(t *testing.T) {
	t.Parallel()

	const doc = `<iati-activities>
		<iati-activity xml:lang="en">
			<iati-identifier>XX-1</iati-identifier>
			<title><narrative xml:lang="fr">Projet</narrative></title>
			<transaction><value>10</value></transaction>
			<transaction><value>20</value></transaction>
			<budget><value>30</value></budget>
		</iati-activity>
		<iati-activity>
			<iati-identifier>XX-2</iati-identifier>
			<title><narrative>Second</narrative></title>
		</iati-activity>
	</iati-activities>`

	p, store, desc := newTestPipeline(t, doc)
	ctx := context.Background()
	sum := model.NewSummary()

	if err := p.Ingest(ctx, desc, sum); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	counts := sum.Snapshot()
	if counts.Activities != 2 {
		t.Errorf("expected 2 activities, got %d", counts.Activities)
	}
	if counts.Children != 3 {
		t.Errorf("expected 3 children, got %d", counts.Children)
	}
	if counts.Rejected != 0 {
		t.Errorf("expected no rejections, got %d", counts.Rejected)
	}

	t.Run("children are popped from the stored element", func(t *testing.T) {
		act, err := store.GetActivity(ctx, "XX-1")
		if err != nil {
			t.Fatalf("failed to get activity: %v", err)
		}
		if act == nil {
			t.Fatal("activity XX-1 not stored")
		}
		if _, ok := act.Element["transaction"]; ok {
			t.Error("transaction must be popped from the element")
		}
		if _, ok := act.Element["budget"]; ok {
			t.Error("budget must be popped from the element")
		}

		transactions, err := store.GetChildren(ctx, "XX-1", model.ChildTransaction)
		if err != nil {
			t.Fatalf("failed to get transactions: %v", err)
		}
		if len(transactions) != 2 {
			t.Errorf("expected 2 transaction rows, got %d", len(transactions))
		}
	})

	t.Run("narratives carry path and language", func(t *testing.T) {
		ns, err := store.GetNarratives(ctx, "XX-1")
		if err != nil {
			t.Fatalf("failed to get narratives: %v", err)
		}
		if len(ns) != 1 {
			t.Fatalf("expected 1 narrative, got %d", len(ns))
		}
		if ns[0].Path != "['title']['narrative'][0]" {
			t.Errorf("unexpected path %q", ns[0].Path)
		}
		if ns[0].Lang != "fr" {
			t.Errorf("expected fr, got %q", ns[0].Lang)
		}
		if ns[0].Text != "Projet" {
			t.Errorf("expected Projet, got %q", ns[0].Text)
		}

		act, err := store.GetActivity(ctx, "XX-1")
		if err != nil {
			t.Fatalf("failed to get activity: %v", err)
		}
		title, ok := act.Element["title"].(map[string]any)
		if !ok {
			t.Fatalf("expected title map, got %T", act.Element["title"])
		}
		if _, ok := title["narrative"]; ok {
			t.Error("narrative must be removed from the stored element")
		}
	})

	t.Run("narrative language falls back to the default", func(t *testing.T) {
		ns, err := store.GetNarratives(ctx, "XX-2")
		if err != nil {
			t.Fatalf("failed to get narratives: %v", err)
		}
		if len(ns) != 1 {
			t.Fatalf("expected 1 narrative, got %d", len(ns))
		}
		if ns[0].Lang != "en" {
			t.Errorf("expected en fallback, got %q", ns[0].Lang)
		}
	})
}

// newVersionedServer serves two revisions of the same activity under
// /v1 and /v2.
func newVersionedServer(t *testing.T) *httptest.Server {
	t.Helper()

	const docV1 = `<iati-activities>
		<iati-activity>
			<iati-identifier>XX-1</iati-identifier>
			<title><narrative>old title</narrative></title>
			<transaction><value>10</value></transaction>
		</iati-activity>
	</iati-activities>`
	const docV2 = `<iati-activities>
		<iati-activity>
			<iati-identifier>XX-1</iati-identifier>
			<title><narrative>new title</narrative></title>
			<transaction><value>10</value></transaction>
			<transaction><value>20</value></transaction>
		</iati-activity>
	</iati-activities>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2" {
			_, _ = w.Write([]byte(docV2))
			return
		}
		_, _ = w.Write([]byte(docV1))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestIngestReingestion tests the overwrite rules: re-ingesting an
// identifier replaces the stored record, narratives, and children
// wholesale, and disabling updates keeps the first write instead.
func TestIngestReingestion(t *testing.T) {
	t.Parallel()

	newPipeline := func(t *testing.T, opts ...PipelineOption) (*Pipeline, *database.Store, *httptest.Server) {
		t.Helper()
		srv := newVersionedServer(t)
		store, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		fetcher := fetch.NewFetcher(cache.NewMemory(), fetch.WithHTTPClient(srv.Client()))
		return NewPipeline(store, fetcher, opts...), store, srv
	}

	t.Run("second ingestion wins by default", func(t *testing.T) {
		t.Parallel()

		p, store, srv := newPipeline(t)
		ctx := context.Background()

		for _, path := range []string{"/v1", "/v2"} {
			desc := fetch.Descriptor{URL: srv.URL + path, BodyType: fetch.BodyXML}
			if err := p.Ingest(ctx, desc, model.NewSummary()); err != nil {
				t.Fatalf("ingest of %s failed: %v", path, err)
			}
		}

		ns, err := store.GetNarratives(ctx, "XX-1")
		if err != nil {
			t.Fatalf("failed to get narratives: %v", err)
		}
		if len(ns) != 1 || ns[0].Text != "new title" {
			t.Errorf("expected the second document's narrative, got %+v", ns)
		}
		transactions, err := store.GetChildren(ctx, "XX-1", model.ChildTransaction)
		if err != nil {
			t.Fatalf("failed to get transactions: %v", err)
		}
		if len(transactions) != 2 {
			t.Errorf("expected 2 transaction rows after re-ingest, got %d", len(transactions))
		}
		total, err := store.CountActivities(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if total != 1 {
			t.Errorf("expected 1 stored activity, got %d", total)
		}
	})

	t.Run("no-update keeps the first write", func(t *testing.T) {
		t.Parallel()

		p, store, srv := newPipeline(t, WithUpdate(false))
		ctx := context.Background()

		first := model.NewSummary()
		if err := p.Ingest(ctx, fetch.Descriptor{URL: srv.URL + "/v1", BodyType: fetch.BodyXML}, first); err != nil {
			t.Fatalf("first ingest failed: %v", err)
		}
		second := model.NewSummary()
		if err := p.Ingest(ctx, fetch.Descriptor{URL: srv.URL + "/v2", BodyType: fetch.BodyXML}, second); err != nil {
			t.Fatalf("second ingest failed: %v", err)
		}

		if got := second.Snapshot().Activities; got != 0 {
			t.Errorf("expected 0 new activities on re-ingest, got %d", got)
		}
		ns, err := store.GetNarratives(ctx, "XX-1")
		if err != nil {
			t.Fatalf("failed to get narratives: %v", err)
		}
		if len(ns) != 1 || ns[0].Text != "old title" {
			t.Errorf("expected the first document's narrative, got %+v", ns)
		}
	})
}

// TestIngestMissingIdentifier tests that an activity without an
// iati-identifier is rejected without stopping the batch.
func TestIngestMissingIdentifier(t *testing.T) {
	t.Parallel()

	const doc = `<iati-activities>
		<iati-activity><title><narrative>nameless</narrative></title></iati-activity>
		<iati-activity><iati-identifier>XX-2</iati-identifier></iati-activity>
	</iati-activities>`

	p, store, desc := newTestPipeline(t, doc)
	ctx := context.Background()
	sum := model.NewSummary()

	if err := p.Ingest(ctx, desc, sum); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	counts := sum.Snapshot()
	if counts.Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", counts.Rejected)
	}
	if counts.Activities != 1 {
		t.Errorf("expected 1 ingested activity, got %d", counts.Activities)
	}
	if len(counts.Failures) != 1 {
		t.Errorf("expected 1 failure note, got %d", len(counts.Failures))
	}

	total, err := store.CountActivities(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 stored activity, got %d", total)
	}
}

// TestIngestOrganisations tests the organisation path, including the
// redirect of activity-shaped elements and the fatal case.
func TestIngestOrganisations(t *testing.T) {
	t.Parallel()

	t.Run("organisation is stored with its handle", func(t *testing.T) {
		t.Parallel()

		const doc = `<iati-organisations>
			<iati-organisation>
				<organisation-identifier>XM-DAC-41114</organisation-identifier>
			</iati-organisation>
		</iati-organisations>`

		p, store, desc := newTestPipeline(t, doc)
		desc.Handle = "undp"
		ctx := context.Background()
		sum := model.NewSummary()

		if err := p.Ingest(ctx, desc, sum); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
		if got := sum.Snapshot().Organisations; got != 1 {
			t.Errorf("expected 1 organisation, got %d", got)
		}

		org, err := store.GetOrganisation(ctx, "XM-DAC-41114")
		if err != nil {
			t.Fatalf("failed to get organisation: %v", err)
		}
		if org == nil || org.Abbreviation != "undp" {
			t.Errorf("unexpected organisation: %#v", org)
		}
	})

	t.Run("activity-shaped element is redirected", func(t *testing.T) {
		t.Parallel()

		const doc = `<iati-organisations>
			<iati-organisation>
				<iati-identifier>XX-9</iati-identifier>
			</iati-organisation>
		</iati-organisations>`

		p, store, desc := newTestPipeline(t, doc)
		ctx := context.Background()
		sum := model.NewSummary()

		if err := p.Ingest(ctx, desc, sum); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
		if got := sum.Snapshot().Activities; got != 1 {
			t.Errorf("expected redirected activity, got %d", got)
		}

		act, err := store.GetActivity(ctx, "XX-9")
		if err != nil {
			t.Fatalf("failed to get activity: %v", err)
		}
		if act == nil {
			t.Error("expected redirected activity to be stored")
		}
	})

	t.Run("element with neither identifier is fatal", func(t *testing.T) {
		t.Parallel()

		const doc = `<iati-organisations>
			<iati-organisation><name>who knows</name></iati-organisation>
		</iati-organisations>`

		p, _, desc := newTestPipeline(t, doc)
		err := p.Ingest(context.Background(), desc, model.NewSummary())
		if err == nil {
			t.Fatal("expected fatal format error")
		}
		if !IsFatalFormat(err) {
			t.Errorf("expected fatal FormatError, got %v", err)
		}
	})
}

// TestIngestUnparseableDocument tests the empty-map contract downstream.
func TestIngestUnparseableDocument(t *testing.T) {
	t.Parallel()

	p, _, desc := newTestPipeline(t, "<html>surprise error page</html")
	sum := model.NewSummary()

	if err := p.Ingest(context.Background(), desc, sum); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	counts := sum.Snapshot()
	if counts.Rejected != 1 || len(counts.Failures) != 1 {
		t.Errorf("expected parse rejection, got %+v", counts)
	}
}
