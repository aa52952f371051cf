package report

import (
	"encoding/json"
	"io"
)

// JSONWriter renders summaries as JSON for tool integration. Output is
// compact by default; the indent options switch the writer to
// pretty-printed form.
//
// Design decision: The indent options install the marshal function rather
// than setting fields the write path inspects, so Write has exactly one
// code path regardless of formatting.
type JSONWriter struct {
	output  io.Writer
	marshal func(v any) ([]byte, error)
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent switches the writer to pretty-printed output using the given
// line prefix and per-level indent string.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.marshal = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, prefix, indent)
		}
	}
}

// WithPrettyPrint switches the writer to pretty-printed output with
// two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		output:  output,
		marshal: json.Marshal,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the summary as a single JSON document.
func (w *JSONWriter) Write(summary *Summary) (int, error) {
	return w.writeValue(summary)
}

// writeValue marshals v and writes it with a trailing newline so shell
// pipelines and line-oriented tools see a complete final line.
func (w *JSONWriter) writeValue(v any) (int, error) {
	data, err := w.marshal(v)
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}

// VersionedSummary pairs a summary with the version of the tool that
// produced it, so archived report files stay attributable after upgrades.
type VersionedSummary struct {
	// Version is the codescan version that generated the summary.
	Version string `json:"version"`

	// Summary is the full project summary.
	Summary *Summary `json:"summary"`
}

// FullJSONWriter renders summaries wrapped in the version metadata
// envelope. The results command uses it for report files meant to be
// archived or compared across tool versions.
type FullJSONWriter struct {
	*JSONWriter

	// version is stamped into every envelope this writer produces.
	version string
}

// NewFullJSONWriter creates a writer for version-wrapped summaries.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write renders the summary inside the version envelope.
func (w *FullJSONWriter) Write(summary *Summary) (int, error) {
	return w.writeValue(VersionedSummary{Version: w.version, Summary: summary})
}
