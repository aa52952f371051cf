package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/codescan-dev/codescan/internal/database"
	"github.com/codescan-dev/codescan/internal/model"
)

// newTestSummary builds a summary with sample data for writer tests.
func newTestSummary() *Summary {
	return &Summary{
		Project:     "acme-api",
		GeneratedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Runs: []RunSummary{
			{
				ID:            "run-2",
				Pipeline:      "find_vulnerabilities",
				Status:        "failure",
				ExitCode:      1,
				Error:         "step match_packages failed",
				ExecutedSteps: []string{"load_advisories"},
				Duration:      "320ms",
			},
			{
				ID:            "run-1",
				Pipeline:      "inspect_codebase",
				Status:        "success",
				ExitCode:      0,
				ExecutedSteps: []string{"collect_inputs", "collect_resources", "detect_packages"},
				Duration:      "1.2s",
			},
		},
		ResourceCount:   3,
		PackageCount:    3,
		DependencyCount: 2,
		RelationCount:   1,
		TotalSize:       2048,
		PackageTypes:    map[string]int{"npm": 2, "deb": 1},
		Packages: []model.DiscoveredPackage{
			{Type: "deb", Name: "libssl3", Version: "3.0.11"},
			{Type: "npm", Name: "express", Version: "4.18.2", ManifestPath: "srv/app/package.json"},
			{Type: "npm", Name: "lodash", Version: "4.17.20", ManifestPath: "srv/app/package.json"},
		},
		Findings: []model.VulnerabilityFinding{
			{
				PackagePURL: "pkg:npm/lodash@4.17.20",
				AdvisoryID:  "CVE-2020-8203",
				Summary:     "Prototype pollution",
				Severity:    model.SeverityCritical,
			},
			{
				PackagePURL: "pkg:npm/lodash@4.17.20",
				AdvisoryID:  "CVE-2021-23337",
				Summary:     "Command injection via template",
				Severity:    model.SeverityHigh,
			},
		},
		CriticalCount: 1,
		HighCount:     1,
	}
}

// manyPackagesSummary builds a summary whose package inventory exceeds the
// listing cap.
func manyPackagesSummary(count int) *Summary {
	s := &Summary{
		Project:      "bulk",
		GeneratedAt:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		PackageCount: count,
		PackageTypes: map[string]int{"deb": count},
	}
	for i := range count {
		s.Packages = append(s.Packages, model.DiscoveredPackage{
			Type:    "deb",
			Name:    fmt.Sprintf("pkg-%03d", i),
			Version: "1.0.0",
		})
	}
	return s
}

// TestTextWriter tests the human-readable report writer.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CODESCAN REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "acme-api") {
			t.Error("expected output to contain project name")
		}
		if !strings.Contains(output, "2.0 kB") {
			t.Error("expected output to contain humanized total size")
		}
	})

	t.Run("writes run history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[+] inspect_codebase: success (exit 0, 1.2s)") {
			t.Error("expected output to contain successful run line")
		}
		if !strings.Contains(output, "[x] find_vulnerabilities: failure") {
			t.Error("expected output to contain failed run line")
		}
		if !strings.Contains(output, "Error: step match_packages failed") {
			t.Error("expected output to contain run error")
		}
	})

	t.Run("writes package types", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PACKAGE TYPES") {
			t.Error("expected package types section")
		}
		if !strings.Contains(output, "deb: 1") {
			t.Error("expected deb count")
		}
		if !strings.Contains(output, "npm: 2") {
			t.Error("expected npm count")
		}
	})

	t.Run("writes findings grouped by severity", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!!!] CRITICAL") {
			t.Error("expected critical severity group")
		}
		if !strings.Contains(output, "CVE-2020-8203 pkg:npm/lodash@4.17.20") {
			t.Error("expected critical finding line")
		}
		if !strings.Contains(output, "[!!] HIGH") {
			t.Error("expected high severity group")
		}
		if !strings.Contains(output, "TOTAL:    2 findings") {
			t.Error("expected findings total")
		}
	})

	t.Run("verbose mode includes details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithVerbose(true))

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Summary: Prototype pollution") {
			t.Error("expected verbose output to contain finding summaries")
		}
		if !strings.Contains(output, "Steps: collect_inputs, collect_resources, detect_packages") {
			t.Error("expected verbose output to contain executed steps")
		}
		if !strings.Contains(output, "Manifest: srv/app/package.json") {
			t.Error("expected verbose output to contain manifest paths")
		}
	})

	t.Run("hides empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		summary := &Summary{Project: "bare", GeneratedAt: time.Now()}

		_, err := w.Write(summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "RUNS") {
			t.Error("expected runs section to be hidden")
		}
		if strings.Contains(output, "VULNERABILITIES") {
			t.Error("expected vulnerabilities section to be hidden")
		}
	})

	t.Run("shows empty sections with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithShowEmpty(true))
		summary := &Summary{Project: "bare", GeneratedAt: time.Now()}

		_, err := w.Write(summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No runs recorded") {
			t.Error("expected empty runs message")
		}
		if !strings.Contains(output, "No packages discovered") {
			t.Error("expected empty packages message")
		}
		if !strings.Contains(output, "No findings") {
			t.Error("expected empty findings message")
		}
	})

	t.Run("caps long package listings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(manyPackagesSummary(60))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "... and 10 more") {
			t.Error("expected capped listing note")
		}
		if strings.Contains(output, "pkg-055") {
			t.Error("expected packages past the cap to be omitted")
		}
	})

	t.Run("verbose mode lists every package", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithVerbose(true))

		_, err := w.Write(manyPackagesSummary(60))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "pkg-059") {
			t.Error("expected verbose output to list every package")
		}
		if strings.Contains(output, "more") {
			t.Error("expected no cap note in verbose output")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed Summary
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Project != "acme-api" {
			t.Errorf("expected project %q, got %q", "acme-api", parsed.Project)
		}
		if parsed.CriticalCount != 1 {
			t.Errorf("expected critical count 1, got %d", parsed.CriticalCount)
		}
		if len(parsed.Packages) != 3 {
			t.Errorf("expected 3 packages, got %d", len(parsed.Packages))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})
}

// TestFullJSONWriter tests the JSON writer with the metadata wrapper.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.0", WithPrettyPrint())

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed VersionedSummary
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.0" {
			t.Errorf("expected version %q, got %q", "1.2.0", parsed.Version)
		}
		if parsed.Summary == nil || parsed.Summary.Project != "acme-api" {
			t.Errorf("expected wrapped summary, got %+v", parsed.Summary)
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewTextWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)

		n, err := multi.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		// Verify formats are different
		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (text) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()

		n, err := multi.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Codescan Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "`acme-api`") {
			t.Error("expected output to contain project name")
		}
		// The newest run failed, so the header badge shows the failure.
		if !strings.Contains(output, "❌ Failure") {
			t.Error("expected latest run badge in header")
		}
	})

	t.Run("writes runs table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Runs") {
			t.Error("expected runs section header")
		}
		if !strings.Contains(output, "`inspect_codebase`") {
			t.Error("expected pipeline name in runs table")
		}
		if !strings.Contains(output, "✅ Success") {
			t.Error("expected success badge in runs table")
		}
	})

	t.Run("writes inventory counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Inventory") {
			t.Error("expected inventory section header")
		}
		if !strings.Contains(output, "Dependencies") {
			t.Error("expected dependencies row")
		}
		if !strings.Contains(output, "2.0 kB") {
			t.Error("expected humanized total size")
		}
	})

	t.Run("includes package type pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "pie") {
			t.Error("expected output to contain mermaid pie chart")
		}
		if !strings.Contains(output, "Package Type Distribution") {
			t.Error("expected chart title")
		}
		if !strings.Contains(output, "Npm") {
			t.Error("expected title-cased chart label")
		}
	})

	t.Run("writes package table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Packages") {
			t.Error("expected packages section header")
		}
		if !strings.Contains(output, "pkg:deb/libssl3@3.0.11") {
			t.Error("expected package purl in table")
		}
		if !strings.Contains(output, "srv/app/package.json") {
			t.Error("expected manifest path in table")
		}
	})

	t.Run("caps long package tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(manyPackagesSummary(60))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "and 10 more packages") {
			t.Error("expected capped table note")
		}
	})

	t.Run("includes caution alert for critical findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected CAUTION alert for critical findings")
		}
	})

	t.Run("includes warning alert for high findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		summary := newTestSummary()
		summary.Findings = summary.Findings[1:]
		summary.CriticalCount = 0

		_, err := w.Write(summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Error("expected WARNING alert for high findings")
		}
	})

	t.Run("includes tip alert without findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		summary := &Summary{Project: "clean", GeneratedAt: time.Now()}

		_, err := w.Write(summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected TIP alert for clean summary")
		}
	})

	t.Run("groups findings by severity", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "🔴 Critical") {
			t.Error("expected critical severity heading")
		}
		if !strings.Contains(output, "CVE-2020-8203") {
			t.Error("expected critical advisory in findings table")
		}
		if !strings.Contains(output, "🟠 High") {
			t.Error("expected high severity heading")
		}
	})

	t.Run("adds details for truncated summaries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		summary := newTestSummary()
		summary.Findings[0].Summary = strings.Repeat("long vulnerability description ", 5)

		_, err := w.Write(summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "<details>") {
			t.Error("expected details element for the truncated summary")
		}
	})

	t.Run("handles empty summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		summary := &Summary{Project: "bare", GeneratedAt: time.Now()}

		_, err := w.Write(summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No runs recorded.") {
			t.Error("expected empty runs message")
		}
		if !strings.Contains(output, "No packages discovered.") {
			t.Error("expected empty packages message")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(newTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://github.com/codescan-dev/codescan") {
			t.Error("expected footer with repository link")
		}
	})
}

// TestTruncateString tests the string truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"ab", 5, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

// TestBuildSummary tests summary assembly from workspace records.
func TestBuildSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ws, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open workspace: %v", err)
	}
	t.Cleanup(func() {
		if err := ws.Close(); err != nil {
			t.Errorf("failed to close workspace: %v", err)
		}
	})

	proj := &model.Project{ID: "p-1", Name: "acme-api", Slug: "acme-api"}
	if err := ws.CreateProject(ctx, proj); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	run := &model.Run{ID: "run-1", ProjectID: proj.ID, Pipeline: "inspect_codebase", Status: model.RunQueued}
	if err := ws.CreateRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := ws.MarkRunStarted(ctx, run.ID); err != nil {
		t.Fatalf("failed to mark run started: %v", err)
	}
	steps := []string{"collect_inputs", "collect_resources", "detect_packages"}
	if err := ws.FinalizeRun(ctx, run.ID, model.RunSuccess, 0, "", steps); err != nil {
		t.Fatalf("failed to finalize run: %v", err)
	}

	resources := []model.CodebaseResource{
		{Path: "go.mod", Type: model.ResourceFile, Name: "go.mod", Size: 1024},
		{Path: "main.go", Type: model.ResourceFile, Name: "main.go", Extension: ".go", Size: 1024},
	}
	if err := ws.ReplaceResources(ctx, proj.ID, resources); err != nil {
		t.Fatalf("failed to replace resources: %v", err)
	}

	pkg := &model.DiscoveredPackage{
		ProjectID: proj.ID, Type: "npm", Name: "lodash", Version: "4.17.20",
		ManifestPath: "package.json",
	}
	pkgID, err := ws.UpsertPackage(ctx, pkg)
	if err != nil {
		t.Fatalf("failed to upsert package: %v", err)
	}
	other := &model.DiscoveredPackage{ProjectID: proj.ID, Type: "deb", Name: "libssl3", Version: "3.0.11"}
	if _, err := ws.UpsertPackage(ctx, other); err != nil {
		t.Fatalf("failed to upsert package: %v", err)
	}

	dep := &model.PackageDependency{
		ProjectID: proj.ID, PackageID: pkgID, Type: "npm", Name: "lodash.merge",
		Constraint: "^4.6.2", ManifestPath: "package.json",
	}
	if err := ws.InsertDependency(ctx, dep); err != nil {
		t.Fatalf("failed to insert dependency: %v", err)
	}

	relations := []model.CodebaseRelation{
		{DeployedPath: "to/app.min.js", SourcePath: "from/app.js", Kind: model.RelationJavaScriptSource, Confidence: 0.8},
	}
	if err := ws.ReplaceRelations(ctx, proj.ID, relations); err != nil {
		t.Fatalf("failed to replace relations: %v", err)
	}

	finding := &model.VulnerabilityFinding{
		ProjectID: proj.ID, PackageID: pkgID, PackagePURL: "pkg:npm/lodash@4.17.20",
		AdvisoryID: "CVE-2021-23337", Summary: "Command injection via template",
		Severity: model.SeverityHigh,
	}
	if err := ws.InsertFinding(ctx, finding); err != nil {
		t.Fatalf("failed to insert finding: %v", err)
	}

	summary, err := BuildSummary(ctx, ws, proj)
	if err != nil {
		t.Fatalf("failed to build summary: %v", err)
	}

	if summary.Project != "acme-api" {
		t.Errorf("expected project name, got %q", summary.Project)
	}
	if summary.GeneratedAt.IsZero() {
		t.Error("expected generated timestamp")
	}
	if len(summary.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(summary.Runs))
	}
	if summary.Runs[0].Status != "success" || summary.Runs[0].ExitCode != 0 {
		t.Errorf("unexpected run summary: %+v", summary.Runs[0])
	}
	if got := summary.Runs[0].ExecutedSteps; len(got) != 3 {
		t.Errorf("expected 3 executed steps, got %v", got)
	}
	if summary.ResourceCount != 2 {
		t.Errorf("expected 2 resources, got %d", summary.ResourceCount)
	}
	if summary.TotalSize != 2048 {
		t.Errorf("expected total size 2048, got %d", summary.TotalSize)
	}
	if summary.PackageCount != 2 {
		t.Errorf("expected 2 packages, got %d", summary.PackageCount)
	}
	if summary.DependencyCount != 1 {
		t.Errorf("expected 1 dependency, got %d", summary.DependencyCount)
	}
	if summary.RelationCount != 1 {
		t.Errorf("expected 1 relation, got %d", summary.RelationCount)
	}
	if summary.PackageTypes["npm"] != 1 || summary.PackageTypes["deb"] != 1 {
		t.Errorf("unexpected package types: %v", summary.PackageTypes)
	}
	if summary.TotalFindings() != 1 || summary.HighCount != 1 {
		t.Errorf("expected one high finding, got %d findings, %d high",
			summary.TotalFindings(), summary.HighCount)
	}
	if !summary.HasFindings() {
		t.Error("expected HasFindings to report true")
	}
}
