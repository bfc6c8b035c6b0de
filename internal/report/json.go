package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/iatifetch/internal/model"
)

// JSONWriter outputs summaries as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool
}

// JSONOption configures a JSONWriter.
type JSONOption func(*JSONWriter)

// WithIndent enables pretty-printed output.
func WithIndent() JSONOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary as JSON.
func (w *JSONWriter) Write(counts model.Counts) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(counts, "", "  ")
	} else {
		data, err = json.Marshal(counts)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
