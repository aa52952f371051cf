package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/codescan-dev/codescan/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and severity indicators.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	output io.Writer

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		output:    output,
		showEmpty: false,
		verbose:   false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *TextWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeRuns(&sb, summary)
	w.writePackageTypes(&sb, summary)
	w.writePackages(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with project information.
func (w *TextWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                           CODESCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Project:      %s\n", summary.Project))
	sb.WriteString(fmt.Sprintf("Generated:    %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Resources:    %s (%s)\n",
		humanize.Comma(int64(summary.ResourceCount)), humanize.Bytes(uint64(summary.TotalSize))))
	sb.WriteString(fmt.Sprintf("Packages:     %s\n", humanize.Comma(int64(summary.PackageCount))))
	sb.WriteString(fmt.Sprintf("Dependencies: %s\n", humanize.Comma(int64(summary.DependencyCount))))
	sb.WriteString(fmt.Sprintf("Relations:    %s\n", humanize.Comma(int64(summary.RelationCount))))
	sb.WriteString("\n")
}

// writeRuns writes the pipeline run history section.
func (w *TextWriter) writeRuns(sb *strings.Builder, summary *Summary) {
	if len(summary.Runs) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionRule(sb, "RUNS")

	if len(summary.Runs) == 0 {
		sb.WriteString("  No runs recorded\n")
	}
	for _, run := range summary.Runs {
		detail := fmt.Sprintf("exit %d", run.ExitCode)
		if run.Duration != "" {
			detail += ", " + run.Duration
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s: %s (%s)\n",
			w.statusIndicator(run.Status), run.Pipeline, run.Status, detail))
		if run.Error != "" {
			sb.WriteString(fmt.Sprintf("      Error: %s\n", run.Error))
		}
		if w.verbose && len(run.ExecutedSteps) > 0 {
			sb.WriteString(fmt.Sprintf("      Steps: %s\n", strings.Join(run.ExecutedSteps, ", ")))
		}
	}
	sb.WriteString("\n")
}

// statusIndicator returns a visual indicator for the run status.
func (w *TextWriter) statusIndicator(status string) string {
	switch status {
	case "success":
		return "+"
	case "failure":
		return "x"
	case "stopped":
		return "~"
	case "running":
		return ">"
	default:
		return " "
	}
}

// writePackageTypes writes the per-ecosystem package counts.
func (w *TextWriter) writePackageTypes(sb *strings.Builder, summary *Summary) {
	if len(summary.PackageTypes) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionRule(sb, "PACKAGE TYPES")

	if len(summary.PackageTypes) == 0 {
		sb.WriteString("  No packages discovered\n")
	}
	types := make([]string, 0, len(summary.PackageTypes))
	for typ := range summary.PackageTypes {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", typ, summary.PackageTypes[typ]))
	}
	sb.WriteString("\n")
}

// writePackages writes the discovered package listing. Long inventories
// are capped unless verbose output is requested.
func (w *TextWriter) writePackages(sb *strings.Builder, summary *Summary) {
	if len(summary.Packages) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionRule(sb, "PACKAGES")

	if len(summary.Packages) == 0 {
		sb.WriteString("  No packages discovered\n")
	}

	listed := summary.Packages
	if !w.verbose && len(listed) > maxPackageRows {
		listed = listed[:maxPackageRows]
	}
	for _, pkg := range listed {
		sb.WriteString(fmt.Sprintf("  * %s\n", pkg.PURL()))
		if w.verbose && pkg.ManifestPath != "" {
			sb.WriteString(fmt.Sprintf("    Manifest: %s\n", pkg.ManifestPath))
		}
	}
	if rest := len(summary.Packages) - len(listed); rest > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", rest))
	}
	sb.WriteString("\n")
}

// writeFindings writes vulnerability findings grouped by severity.
func (w *TextWriter) writeFindings(sb *strings.Builder, summary *Summary) {
	if !summary.HasFindings() && !w.showEmpty {
		return
	}

	w.writeSectionRule(sb, "VULNERABILITIES")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", summary.CriticalCount))
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", summary.HighCount))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", summary.MediumCount))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", summary.LowCount))
	sb.WriteString(fmt.Sprintf("  UNKNOWN:  %d\n", summary.UnknownCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d findings\n", summary.TotalFindings()))
	sb.WriteString("\n")

	// Write findings in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityUnknown,
	}

	for _, severity := range severities {
		findings := summary.FindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *TextWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.VulnerabilityFinding) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("  * %s %s\n", finding.AdvisoryID, finding.PackagePURL))
		if w.verbose && finding.Summary != "" {
			sb.WriteString(fmt.Sprintf("    Summary: %s\n", finding.Summary))
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *TextWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "?"
	}
}

// writeSectionRule writes a section heading between horizontal rules.
func (w *TextWriter) writeSectionRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by codescan\n")
	sb.WriteString("https://github.com/codescan-dev/codescan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
