package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/report"
)

// NewResultsCmd creates the results command.
func NewResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results [project]",
		Short: "Render a project's analysis report",
		Long: `Results renders the project's inventory and findings: run history,
resource and package counts, discovered packages, and vulnerability
findings grouped by severity.

The default text report is a terminal summary; large package inventories
are truncated there. The JSON report always carries the full inventory.

Examples:
  # Human-readable report
  codescan results myapp

  # Full JSON report
  codescan results myapp --json

  # Markdown report written to a file
  codescan results myapp --markdown -o reports/myapp.md`,
		Args: cobra.ExactArgs(1),
		RunE: runResultsCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runResultsCmd executes the results command.
func runResultsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := cmd.Context()

	meta, err := requireProject(ctx, ws, args[0])
	if err != nil {
		return err
	}

	summary, err := report.BuildSummary(ctx, ws, meta)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort cleanup

	// JSON output (versioned report with the full inventory)
	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err = writer.Write(summary)
	return err
}

// openOutput opens the report destination: the given file with parent
// directories created as needed, or stdout when path is empty. Reports go
// to files with owner-only permissions since findings can be sensitive.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
