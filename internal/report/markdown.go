package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codescan-dev/codescan/internal/model"
)

// MarkdownWriter renders summaries as GitHub-flavored Markdown, suitable
// for pull request comments and documentation sites.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation. Tables and alerts come out structurally valid, and its
// mermaid integration draws the package type chart without hand-built
// code fences.
type MarkdownWriter struct {
	output io.Writer

	// caser title-cases status and chart labels stored in lowercase.
	caser cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		output: output,
		caser:  cases.Title(language.English),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRuns(md, summary)
	w.writeInventory(md, summary)
	w.writePackages(md, summary)
	w.writeVulnerabilities(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with project information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Codescan Report")
	md.PlainText("")

	latest := "-"
	if len(summary.Runs) > 0 {
		latest = w.statusBadge(summary.Runs[0].Status)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Project", "`" + summary.Project + "`"},
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Latest Run", latest},
		},
	})
	md.PlainText("")
}

// statusBadge returns the run status with a visual indicator.
func (w *MarkdownWriter) statusBadge(status string) string {
	label := w.caser.String(status)
	switch status {
	case "success":
		return "✅ " + label
	case "failure":
		return "❌ " + label
	case "stopped":
		return "⚠️ " + label
	default:
		return label
	}
}

// writeRuns writes the pipeline run history section.
func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, summary *Summary) {
	md.H2("Runs")
	md.PlainText("")

	if len(summary.Runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Runs))
	for i, run := range summary.Runs {
		duration := run.Duration
		if duration == "" {
			duration = "-"
		}
		rows[i] = []string{
			"`" + run.Pipeline + "`",
			w.statusBadge(run.Status),
			strconv.Itoa(run.ExitCode),
			duration,
			strconv.Itoa(len(run.ExecutedSteps)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Pipeline", "Status", "Exit", "Duration", "Steps"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeInventory writes the inventory counts and the package type chart.
func (w *MarkdownWriter) writeInventory(md *markdown.Markdown, summary *Summary) {
	md.H2("Inventory")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Records", "Count"},
		Rows: [][]string{
			{"Resources", humanize.Comma(int64(summary.ResourceCount))},
			{"Total size", humanize.Bytes(uint64(summary.TotalSize))},
			{"Packages", humanize.Comma(int64(summary.PackageCount))},
			{"Dependencies", humanize.Comma(int64(summary.DependencyCount))},
			{"Relations", humanize.Comma(int64(summary.RelationCount))},
			{"Findings", humanize.Comma(int64(summary.TotalFindings()))},
		},
	})
	md.PlainText("")

	if len(summary.PackageTypes) > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of the package type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Package Type Distribution"),
		piechart.WithShowData(true),
	)

	types := make([]string, 0, len(summary.PackageTypes))
	for typ := range summary.PackageTypes {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		chart.LabelAndIntValue(w.caser.String(typ), uint64(summary.PackageTypes[typ]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePackages writes the discovered package table.
func (w *MarkdownWriter) writePackages(md *markdown.Markdown, summary *Summary) {
	md.H2("Packages")
	md.PlainText("")

	if len(summary.Packages) == 0 {
		md.PlainText("No packages discovered.")
		md.PlainText("")
		return
	}

	listed := summary.Packages
	if len(listed) > maxPackageRows {
		listed = listed[:maxPackageRows]
	}

	rows := make([][]string, len(listed))
	for i, pkg := range listed {
		manifest := pkg.ManifestPath
		if manifest == "" {
			manifest = "-"
		}
		rows[i] = []string{
			"`" + pkg.PURL() + "`",
			truncateString(manifest, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Package", "Manifest"},
		Rows:   rows,
	})
	md.PlainText("")

	if rest := len(summary.Packages) - len(listed); rest > 0 {
		md.PlainTextf("... and %d more packages. The JSON format carries the full inventory.", rest)
		md.PlainText("")
	}
}

// writeVulnerabilities writes the findings summary and per-severity tables.
func (w *MarkdownWriter) writeVulnerabilities(md *markdown.Markdown, summary *Summary) {
	md.H2("Vulnerabilities")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(summary.CriticalCount)},
			{"🟠 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"⚪ Unknown", strconv.Itoa(summary.UnknownCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)

	if !summary.HasFindings() {
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityUnknown, "### ⚪ Unknown"},
	}

	for _, sev := range severities {
		findings := summary.FindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	switch {
	case summary.CriticalCount > 0:
		md.Cautionf(
			"Critical vulnerabilities detected! %d critical finding(s) require immediate attention.",
			summary.CriticalCount,
		)
	case summary.HighCount > 0:
		md.Warningf(
			"High severity vulnerabilities detected. %d high severity finding(s) should be addressed.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"Medium severity vulnerabilities found. %d finding(s) should be reviewed.",
			summary.MediumCount,
		)
	case summary.HasFindings():
		md.Note("Only low severity or unclassified findings detected.")
	default:
		md.Tip("No known vulnerabilities in the discovered packages.")
	}
	md.PlainText("")
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.VulnerabilityFinding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		summary := f.Summary
		if summary == "" {
			summary = "-"
		}
		rows[i] = []string{
			f.AdvisoryID,
			"`" + f.PackagePURL + "`",
			truncateString(summary, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Advisory", "Package", "Summary"},
		Rows:   rows,
	})
	md.PlainText("")

	// Add expandable descriptions for findings the table truncated
	for _, f := range findings {
		if len(f.Summary) > 60 {
			md.Details(f.AdvisoryID, f.Summary)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [codescan](https://github.com/codescan-dev/codescan)*")
}
