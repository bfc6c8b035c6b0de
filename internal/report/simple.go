package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/iatifetch/internal/model"
)

// SimpleWriter outputs summaries as plain text for terminal display.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary as plain text.
func (w *SimpleWriter) Write(counts model.Counts) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Run started:      %s\n", counts.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Elapsed:          %s\n", counts.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Handles:          %d\n", counts.Handles)
	fmt.Fprintf(&b, "XML requests:     %d\n", counts.XMLRequests)
	fmt.Fprintf(&b, "Fetched:          %d\n", counts.Fetched)
	fmt.Fprintf(&b, "Soft failures:    %d\n", counts.SoftFailures)
	fmt.Fprintf(&b, "Hard failures:    %d\n", counts.HardFailures)
	fmt.Fprintf(&b, "Organisations:    %d\n", counts.Organisations)
	fmt.Fprintf(&b, "Activities:       %d\n", counts.Activities)
	fmt.Fprintf(&b, "Narratives:       %d\n", counts.Narratives)
	fmt.Fprintf(&b, "Children:         %d\n", counts.Children)
	fmt.Fprintf(&b, "Rejected:         %d\n", counts.Rejected)
	fmt.Fprintf(&b, "Codelists:        %d (%d items)\n", counts.Codelists, counts.CodelistItems)

	if len(counts.Failures) > 0 {
		fmt.Fprintf(&b, "\nFailures (%d):\n", len(counts.Failures))
		for _, note := range counts.Failures {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	return io.WriteString(w.output, b.String())
}
