package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/pipeline"
)

// NewPipelinesCmd creates the pipelines command.
func NewPipelinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipelines",
		Short: "List available pipelines and their steps",
		Long: `Pipelines lists every registered pipeline with its steps, optional
steps, and step groups. The listing is a pure metadata query; nothing is
instantiated or executed.

Examples:
  # Human-readable listing
  codescan pipelines

  # Machine-readable metadata
  codescan pipelines --json`,
		Args: cobra.NoArgs,
		RunE: runPipelinesCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output pipeline metadata in JSON format")

	return cmd
}

// runPipelinesCmd executes the pipelines command.
func runPipelinesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	defs := reg.Definitions()

	if jsonOutput {
		metas := make([]pipeline.Metadata, 0, len(defs))
		for _, def := range defs {
			metas = append(metas, def.Declaration.Metadata())
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(metas)
	}

	fmt.Fprintf(out, "Available pipelines (%d):\n\n", len(defs))
	for _, def := range defs {
		decl := def.Declaration
		fmt.Fprintf(out, "  %s\n", decl.Name)
		if decl.Description != "" {
			fmt.Fprintf(out, "      %s\n", decl.Description)
		}
		for _, spec := range decl.Steps {
			line := fmt.Sprintf("        %-26s %s", spec.Name, spec.Description)
			switch {
			case spec.Optional && len(spec.Groups) > 0:
				line += fmt.Sprintf(" (optional, groups: %s)", strings.Join(spec.Groups, ", "))
			case spec.Optional:
				// Selectable only by explicit step name.
				line += " (optional)"
			}
			fmt.Fprintln(out, strings.TrimRight(line, " "))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Use 'codescan run <pipeline> <project>' to execute a pipeline.")
	return nil
}
