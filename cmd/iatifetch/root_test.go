package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewRootCmd tests command registration.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "iatifetch" {
		t.Errorf("unexpected use %q", cmd.Use)
	}

	want := map[string]bool{
		"crawl":     false,
		"ingest":    false,
		"codelists": false,
		"handles":   false,
		"version":   false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

// TestVersionCmd tests the version output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(buf.String(), "iatifetch version") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

// TestCrawlFlagDefaults tests the registered defaults.
func TestCrawlFlagDefaults(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		t.Fatalf("missing concurrency flag: %v", err)
	}
	if concurrency != 50 {
		t.Errorf("unexpected default concurrency %d", concurrency)
	}

	rows, err := cmd.Flags().GetInt("rows")
	if err != nil {
		t.Fatalf("missing rows flag: %v", err)
	}
	if rows != 1000 {
		t.Errorf("unexpected default rows %d", rows)
	}

	for _, name := range []string{"refresh", "exclude-cached", "insecure", "json", "markdown"} {
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			t.Fatalf("missing %s flag: %v", name, err)
		}
		if v {
			t.Errorf("flag %s must default to false", name)
		}
	}
}

// TestConflictingReportFlags tests that --json and --markdown together are
// rejected before any network activity.
func TestConflictingReportFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"crawl", "--json", "--markdown"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for conflicting formats")
	}
	if !strings.Contains(err.Error(), "conflicting report formats") {
		t.Errorf("unexpected error: %v", err)
	}
}
