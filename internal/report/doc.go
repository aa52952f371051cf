// Package report builds and renders project summaries.
//
// BuildSummary aggregates a project's workspace records into a Summary,
// and writers render it in different output formats:
//   - TextWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: We separate summary rendering from the workspace
// records (which live in the database and model packages) to follow the
// single responsibility principle. This allows adding new output formats
// without modifying the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
