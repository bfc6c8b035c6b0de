package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestTrimHandlerTruncatesLongStrings tests that oversized values are cut.
func TestTrimHandlerTruncatesLongStrings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	long := strings.Repeat("x", MaxAttrLen*4)
	logger.Info("fetched", "body", long, "url", "https://example.org")

	out := buf.String()
	if strings.Contains(out, long) {
		t.Error("expected long value to be truncated")
	}
	if !strings.Contains(out, truncatedSuffix) {
		t.Error("expected truncation marker")
	}
	if !strings.Contains(out, "https://example.org") {
		t.Error("short values must pass through untouched")
	}
}

// TestTrimHandlerTruncatesLongErrors tests the error attribute path.
func TestTrimHandlerTruncatesLongErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Warn("decode failed", "error", errors.New(strings.Repeat("e", MaxAttrLen*2)))

	if !strings.Contains(buf.String(), truncatedSuffix) {
		t.Error("expected error value to be truncated")
	}
}

// TestTrimHandlerGroups tests that grouped attributes are trimmed too.
func TestTrimHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Info("request done", slog.Group("response",
		slog.String("body", strings.Repeat("y", MaxAttrLen*2)),
		slog.Int("status", 200),
	))

	out := buf.String()
	if !strings.Contains(out, truncatedSuffix) {
		t.Error("expected grouped value to be truncated")
	}
	if !strings.Contains(out, "status=200") {
		t.Error("expected non-string group members untouched")
	}
}

// TestVerboseLevels tests the level switch.
func TestVerboseLevels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	NewLogger(&quiet, false).Debug("hidden")
	if quiet.Len() != 0 {
		t.Error("debug must be suppressed without verbose")
	}

	var verbose bytes.Buffer
	NewLogger(&verbose, true).Debug("visible")
	if verbose.Len() == 0 {
		t.Error("debug must appear with verbose")
	}
}
