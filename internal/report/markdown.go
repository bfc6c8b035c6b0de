package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/iatifetch/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(counts model.Counts) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("IATI Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", counts.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", counts.Elapsed.Round(time.Millisecond).String()},
			{"Handles", strconv.Itoa(counts.Handles)},
			{"XML requests", strconv.Itoa(counts.XMLRequests)},
		},
	})
	md.PlainText("")

	md.H2("Fetch")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Fetched", strconv.Itoa(counts.Fetched)},
			{"Soft failures", strconv.Itoa(counts.SoftFailures)},
			{"Hard failures", strconv.Itoa(counts.HardFailures)},
		},
	})
	md.PlainText("")

	md.H2("Ingest")
	md.Table(markdown.TableSet{
		Header: []string{"Record", "Count"},
		Rows: [][]string{
			{"Organisations", strconv.Itoa(counts.Organisations)},
			{"Activities", strconv.Itoa(counts.Activities)},
			{"Narratives", strconv.Itoa(counts.Narratives)},
			{"Children", strconv.Itoa(counts.Children)},
			{"Rejected", strconv.Itoa(counts.Rejected)},
			{"Codelists", strconv.Itoa(counts.Codelists)},
			{"Codelist items", strconv.Itoa(counts.CodelistItems)},
		},
	})

	if len(counts.Failures) > 0 {
		md.PlainText("")
		md.H2("Failures")
		md.BulletList(counts.Failures...)
	}

	return len(md.String()), md.Build()
}
