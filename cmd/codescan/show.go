package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/database"
	"github.com/codescan-dev/codescan/internal/model"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [project]",
		Short: "Show projects and their runs",
		Long: `Show lists the workspace's projects, or the details and run history
of one project.

Examples:
  # List every project in the workspace
  codescan show

  # Show one project with its runs
  codescan show myapp

  # Machine-readable project record
  codescan show myapp --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
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

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		return listProjects(ctx, out, ws, jsonOutput)
	}
	return showProject(ctx, out, ws, args[0], jsonOutput)
}

// listProjects prints every project in the workspace.
func listProjects(ctx context.Context, out io.Writer, ws *database.Workspace, jsonOutput bool) error {
	projects, err := ws.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(projects)
	}

	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects in the workspace.")
		fmt.Fprintln(out, "\nUse 'codescan create <name>' to create one.")
		return nil
	}

	fmt.Fprintf(out, "Projects (%d):\n\n", len(projects))
	fmt.Fprintf(out, "  %-24s  %-19s  %s\n", "NAME", "CREATED", "ID")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, p := range projects {
		fmt.Fprintf(out, "  %-24s  %-19s  %s\n",
			p.Name, p.CreatedAt.Format("2006-01-02 15:04:05"), p.ID)
	}
	fmt.Fprintln(out, "\nUse 'codescan show <project>' to see a project's runs.")

	return nil
}

// showProject prints one project's details and run history.
func showProject(ctx context.Context, out io.Writer, ws *database.Workspace, name string, jsonOutput bool) error {
	meta, err := requireProject(ctx, ws, name)
	if err != nil {
		return err
	}

	runs, err := ws.ListRuns(ctx, meta.ID)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		payload := struct {
			Project *model.Project `json:"project"`
			Runs    []model.Run    `json:"runs"`
		}{meta, runs}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	fmt.Fprintf(out, "Project: %s\n", meta.Name)
	fmt.Fprintf(out, "  id:      %s\n", meta.ID)
	fmt.Fprintf(out, "  slug:    %s\n", meta.Slug)
	fmt.Fprintf(out, "  created: %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(runs) == 0 {
		fmt.Fprintln(out, "\nNo runs yet.")
		fmt.Fprintf(out, "\nUse 'codescan run <pipeline> %s' to start one.\n", meta.Name)
		return nil
	}

	fmt.Fprintf(out, "\nRuns (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-22s  %-11s  %-19s  %s\n",
		"ID", "PIPELINE", "STATUS", "CREATED", "DURATION")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))
	for _, run := range runs {
		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Millisecond).String()
		}
		fmt.Fprintf(out, "  %-36s  %-22s  %-11s  %-19s  %s\n",
			run.ID, run.Pipeline, run.Status,
			run.CreatedAt.Format("2006-01-02 15:04:05"), duration)
		if run.Error != "" {
			fmt.Fprintf(out, "      error: %s\n", run.Error)
		}
	}
	fmt.Fprintln(out, "\nUse 'codescan results "+meta.Name+"' to render the project report.")

	return nil
}
