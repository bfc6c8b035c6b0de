package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/iatifetch/internal/model"
)

// newFakeRegistry serves a one-publisher registry.
func newFakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/api/3/action/organization_list", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "result": ["undp"]}`))
	})
	mux.HandleFunc("/api/3/action/package_search", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"success": true, "result": {"results": [
			{"resources": [{"format": "IATI-XML", "url": %q}]}
		]}}`, srv.URL+"/files/undp.xml")
	})
	mux.HandleFunc("/files/undp.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<iati-activities>
			<iati-activity><iati-identifier>UNDP-1</iati-identifier>
				<title><narrative>One</narrative></title>
			</iati-activity>
		</iati-activities>`))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestIngestCommandEndToEnd tests the full CLI path against a fake
// registry: flags, wiring, dispatch, and the JSON report.
func TestIngestCommandEndToEnd(t *testing.T) {
	srv := newFakeRegistry(t)
	dbDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"ingest",
		"--api-root", srv.URL + "/api/3/",
		"--db-dir", dbDir,
		"--json",
		"--output", reportPath,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("ingest command failed: %v", err)
	}

	data, err := os.ReadFile(reportPath) //nolint:gosec // Test-controlled path
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var counts model.Counts
	if err := json.Unmarshal(data, &counts); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if counts.Handles != 1 {
		t.Errorf("expected 1 handle, got %d", counts.Handles)
	}
	if counts.Activities != 1 {
		t.Errorf("expected 1 activity, got %d", counts.Activities)
	}
	if counts.Narratives != 1 {
		t.Errorf("expected 1 narrative, got %d", counts.Narratives)
	}

	if _, err := os.Stat(filepath.Join(dbDir, "iatifetch.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}
