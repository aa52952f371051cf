package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/project"
)

// NewCreateCmd creates the create command.
func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [project]",
		Short: "Create a project workspace",
		Long: `Create makes a new project: a row in the workspace database plus the
input/codebase/output/tmp directory tree under the workspace directory.

Input files registered with --input are copied into the project's input
directory. The inspect_codebase and analyze_docker_image pipelines pick
them up from there.

Examples:
  # Create an empty project
  codescan create myapp

  # Create a project and register an archive as input
  codescan create myapp --input app.tar.gz

  # Register several inputs at once
  codescan create myapp -i app.tar.gz -i image.tar`,
		Args: cobra.ExactArgs(1),
		RunE: runCreateCmd,
	}

	cmd.Flags().StringArrayP("input", "i", nil,
		"Input file to register with the project (repeatable)")

	return cmd
}

// runCreateCmd executes the create command.
func runCreateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	inputs, err := cmd.Flags().GetStringArray("input")
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	proj, err := project.Create(cmd.Context(), ws, cfg.WorkspaceDir, args[0], logger)
	if err != nil {
		return err
	}

	fmt.Printf("Project %s created\n", proj.Meta.Name)
	fmt.Printf("  workspace: %s\n", proj.Dir)

	for _, input := range inputs {
		dst, err := proj.AddInput(input)
		if err != nil {
			return fmt.Errorf("failed to register input %s: %w", input, err)
		}
		fmt.Printf("  input:     %s\n", filepath.Base(dst))
	}

	return nil
}
