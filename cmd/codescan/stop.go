package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/pipeline"
)

// NewStopCmd creates the stop command.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [run-id]",
		Short: "Stop a queued or running run",
		Long: `Stop ends a run cooperatively. A queued run is finalized as stopped
without ever executing. A running run finishes its current step, then
stops before the next one; steps are never killed mid-flight.

Stopped runs record exit code 99 so shell callers can tell an operator
stop from a failure.`,
		Args: cobra.ExactArgs(1),
		RunE: runStopCmd,
	}
}

// runStopCmd executes the stop command.
func runStopCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := cmd.Context()

	runID := args[0]
	run, err := ws.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %q not found", runID)
	}
	if run.Status.Terminal() {
		return fmt.Errorf("run %s already finished with status %s", runID, run.Status)
	}

	if run.Status == model.RunQueued {
		stopped, err := ws.MarkQueuedRunStopped(ctx, runID, pipeline.ExitStopped)
		if err != nil {
			return err
		}
		if stopped {
			fmt.Printf("Run %s stopped before execution\n", runID)
			return nil
		}
		// A worker claimed the run between the read and the update; fall
		// through to the cooperative flag.
	}

	if err := ws.RequestStop(ctx, runID); err != nil {
		return err
	}

	fmt.Printf("Stop requested for run %s\n", runID)
	fmt.Println("The run finishes its current step and stops at the next boundary.")
	return nil
}
