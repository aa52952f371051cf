// Package main provides the entry point for the codescan CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/config"
)

// NewRootCmd creates the root command for codescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codescan",
		Short: "Pipeline-based software composition analysis",
		Long: `Codescan analyzes codebases and container images through composable
pipelines. Each project gets a persisted workspace; pipeline runs record
every file, detected package, dependency, and vulnerability finding so
results stay queryable after the run.

Typical workflow:
  codescan create myapp --input app.tar.gz
  codescan run inspect_codebase myapp
  codescan results myapp`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("workspace", "w", config.XDGDataDir(),
		"Workspace directory holding the database and project trees")

	// Add subcommands
	cmd.AddCommand(NewCreateCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewResumeCmd())
	cmd.AddCommand(NewStopCmd())
	cmd.AddCommand(NewWorkerCmd())
	cmd.AddCommand(NewPipelinesCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewResultsCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// exitError carries a run's exit code through RunE so the process can
// report it. Stopped runs exit with a code distinct from plain failures.
type exitError struct {
	code int
	msg  string
}

// Error returns the message shown on stderr.
func (e *exitError) Error() string {
	return e.msg
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
