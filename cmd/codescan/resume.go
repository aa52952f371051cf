package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/worker"
)

// NewResumeCmd creates the resume command.
func NewResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume [run-id]",
		Short: "Resume a failed or stopped run",
		Long: `Resume creates a new run covering the steps the given run never
completed. The prior run is left untouched; its selection and executed
steps determine the new run's explicit step list.

A resumed run re-executes nothing: steps that completed in the prior run
are skipped even when a later step failed because of their output. Rerun
the full pipeline instead when earlier steps must repeat.

Examples:
  # Execute the remaining steps now
  codescan resume 4be22809-5c2b-4222-a528-c58297b0e0a4

  # Queue the remainder for a worker
  codescan resume 4be22809-5c2b-4222-a528-c58297b0e0a4 --queue`,
		Args: cobra.ExactArgs(1),
		RunE: runResumeCmd,
	}

	cmd.Flags().BoolP("queue", "q", false,
		"Queue the resumed run for a worker instead of executing now")

	return cmd
}

// runResumeCmd executes the resume command.
func runResumeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	queue, err := cmd.Flags().GetBool("queue")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	runID := args[0]
	prior, err := ws.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if prior == nil {
		return fmt.Errorf("run %q not found", runID)
	}
	if !prior.Status.Terminal() {
		return fmt.Errorf("run %s has status %s; only finished runs can be resumed", runID, prior.Status)
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	def, err := reg.Lookup(prior.Pipeline)
	if err != nil {
		return err
	}

	remainder := remainderSteps(def.Declaration, prior)
	if len(remainder) == 0 {
		return fmt.Errorf("run %s completed every selected step; nothing to resume", runID)
	}

	sel := pipeline.Selection{Steps: remainder}
	run, err := newRun(ctx, ws, prior.ProjectID, prior.Pipeline, sel, prior.Profile, queue)
	if err != nil {
		return err
	}

	fmt.Printf("Resuming run %s as %s: %d steps remain\n", prior.ID, run.ID, len(remainder))

	if queue {
		fmt.Println("Start a worker with 'codescan worker' to execute queued runs.")
		return nil
	}

	out, err := worker.ExecuteRun(ctx, ws, cfg.WorkspaceDir, reg, run, logger)
	if err != nil {
		return err
	}
	return reportOutcome(run.ID, out)
}

// remainderSteps computes the steps a resumption must execute: the prior
// run's selection minus the steps it already completed, in declared order.
func remainderSteps(decl pipeline.Declaration, prior *model.Run) []string {
	specs, _ := decl.Select(pipeline.Selection{Groups: prior.SelectedGroups, Steps: prior.SelectedSteps})

	executed := make(map[string]bool, len(prior.ExecutedSteps))
	for _, name := range prior.ExecutedSteps {
		executed[name] = true
	}

	remainder := make([]string, 0, len(specs))
	for _, spec := range specs {
		if !executed[spec.Name] {
			remainder = append(remainder, spec.Name)
		}
	}
	return remainder
}
