package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/database"
	"github.com/codescan-dev/codescan/internal/log"
	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/pipelines"
	"github.com/codescan-dev/codescan/internal/worker"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [pipeline] [project]",
		Short: "Execute a pipeline against a project",
		Long: `Run executes an analysis pipeline against a project workspace.

By default the run executes in this process and the command exits with
the run's exit code: 0 on success, 1 on failure, 99 when stopped. With
--queue the run is persisted as queued instead, waiting for a worker.

Optional pipeline steps are off by default. Enable them per run with
--groups, or pin the exact step list with --steps (which overrides
--groups entirely).

Examples:
  # Inventory a codebase
  codescan run inspect_codebase myapp

  # Enable the optional fingerprint step group
  codescan run inspect_codebase myapp --groups fingerprint

  # Run only two specific steps
  codescan run inspect_codebase myapp --steps collect_resources,detect_packages

  # Queue the run for a worker
  codescan run analyze_docker_image myapp --queue

Configuration file (.codescan.yaml) example:
  pipelines:
    inspect_codebase:
      groups: [fingerprint]
    find_vulnerabilities:
      profile: true`,
		Args: cobra.ExactArgs(2),
		RunE: runRunCmd,
	}

	// Step selection flags
	cmd.Flags().StringSliceP("groups", "g", nil,
		"Optional step groups to enable (e.g. fingerprint)")
	cmd.Flags().StringSliceP("steps", "s", nil,
		"Explicit step list; overrides --groups")
	cmd.Flags().BoolP("profile", "p", false,
		"Record per-step wall-clock and allocation measurements")

	// Execution mode
	cmd.Flags().BoolP("queue", "q", false,
		"Queue the run for a worker instead of executing now")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .codescan.yaml in current or home directory)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	pipelineName, projectName := args[0], args[1]

	queue, err := cmd.Flags().GetBool("queue")
	if err != nil {
		return err
	}
	sel, profile, err := resolveSelection(cmd, cfg, pipelineName)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signalContext(logger)
	defer cancel()

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	def, err := reg.Lookup(pipelineName)
	if err != nil {
		return fmt.Errorf("%w (use 'codescan pipelines' to list available pipelines)", err)
	}
	warnUnknownSteps(def.Declaration, sel)

	meta, err := requireProject(ctx, ws, projectName)
	if err != nil {
		return err
	}

	run, err := newRun(ctx, ws, meta.ID, pipelineName, sel, profile, queue)
	if err != nil {
		return err
	}

	if queue {
		fmt.Printf("Run %s queued: %s on %s\n", run.ID, pipelineName, projectName)
		fmt.Println("Start a worker with 'codescan worker' to execute queued runs.")
		return nil
	}

	fmt.Printf("Running %s on %s...\n", pipelineName, projectName)
	out, err := worker.ExecuteRun(ctx, ws, cfg.WorkspaceDir, reg, run, logger)
	if err != nil {
		return err
	}
	return reportOutcome(run.ID, out)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getWorkspaceFlag retrieves the workspace directory flag from the command
// or its parent. An empty result means the flag is unavailable and the
// config default applies.
func getWorkspaceFlag(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("workspace")
	if err != nil {
		dir, err = cmd.Root().PersistentFlags().GetString("workspace")
		if err != nil {
			return ""
		}
	}
	return dir
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if dir := getWorkspaceFlag(cmd); dir != "" {
		cfg.WorkspaceDir = dir
	}

	// Commands honoring .codescan.yaml declare a --config flag.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently use empty defaults.
	if cmd.Flags().Lookup("config") == nil {
		return cfg, nil
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = path

	explicitConfigPath := path != ""
	configPath := config.FindFile(path)

	if configPath != "" {
		cfg.Defaults, err = config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", path)
	} else {
		// Use empty defaults if no file found and none was specified
		cfg.Defaults = &config.File{Pipelines: make(map[string]config.PipelineDefaults)}
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, log.Level(verbose))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. Runs
// observe the cancellation at the next step boundary and finalize as
// stopped.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openWorkspace opens the shared workspace database, creating the
// directory on first use.
func openWorkspace(cfg *config.Config) (*database.Workspace, error) {
	ws, err := database.Open(cfg.WorkspaceDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}

// newRegistry builds the pipeline registry with every built-in pipeline
// bound to the host configuration.
func newRegistry(cfg *config.Config) (*pipeline.Registry, error) {
	reg := pipeline.NewRegistry()
	if err := pipelines.RegisterAll(reg, cfg); err != nil {
		return nil, err
	}
	return reg, nil
}

// requireProject resolves a project name to its persisted row.
func requireProject(ctx context.Context, ws *database.Workspace, name string) (*model.Project, error) {
	meta, err := ws.GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("project %q not found (use 'codescan show' to list projects)", name)
	}
	return meta, nil
}

// resolveSelection merges the command's selection flags with the config
// file defaults for the pipeline. Flags win; an explicit step list
// overrides groups the same way in both sources.
func resolveSelection(cmd *cobra.Command, cfg *config.Config, pipelineName string) (pipeline.Selection, bool, error) {
	groups, err := cmd.Flags().GetStringSlice("groups")
	if err != nil {
		return pipeline.Selection{}, false, err
	}
	steps, err := cmd.Flags().GetStringSlice("steps")
	if err != nil {
		return pipeline.Selection{}, false, err
	}
	profile, err := cmd.Flags().GetBool("profile")
	if err != nil {
		return pipeline.Selection{}, false, err
	}

	if cfg.Defaults != nil {
		defaults := cfg.Defaults.GetPipelineDefaults(pipelineName)
		if len(groups) == 0 {
			groups = defaults.Groups
		}
		if len(steps) == 0 {
			steps = defaults.Steps
		}
		if defaults.Profile {
			profile = true
		}
	}

	return pipeline.Selection{Groups: groups, Steps: steps}, profile, nil
}

// warnUnknownSteps reports selected step names the pipeline does not
// declare. The engine drops them too, but queued runs execute far from
// the terminal, so the warning belongs at request time.
func warnUnknownSteps(decl pipeline.Declaration, sel pipeline.Selection) {
	_, unknown := decl.Select(sel)
	for _, name := range unknown {
		fmt.Fprintf(os.Stderr, "Warning: step %q is not declared by pipeline %s\n", name, decl.Name)
	}
}

// newRun persists the run row for a request. Queued runs wait for a
// worker; runs executed in-process start as not_started and move to
// running when execution begins.
func newRun(ctx context.Context, ws *database.Workspace, projectID, pipelineName string, sel pipeline.Selection, profile, queue bool) (*model.Run, error) {
	status := model.RunNotStarted
	if queue {
		status = model.RunQueued
	}

	run := &model.Run{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Pipeline:       pipelineName,
		Status:         status,
		SelectedGroups: sel.Groups,
		SelectedSteps:  sel.Steps,
		Profile:        profile,
	}
	if err := ws.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// reportOutcome prints the terminal result and maps it to the process
// exit code, keeping stopped runs distinguishable from failures.
func reportOutcome(runID string, out *pipeline.Outcome) error {
	fmt.Printf("Run %s finished: %s (%d steps in %s)\n",
		runID, out.State, len(out.ExecutedSteps), out.Duration().Round(time.Millisecond))

	switch out.State {
	case pipeline.StateSuccess:
		return nil
	case pipeline.StateStopped:
		return &exitError{code: out.ExitCode, msg: fmt.Sprintf("run %s stopped: %s", runID, out.Error)}
	default:
		return &exitError{code: out.ExitCode, msg: fmt.Sprintf("run %s failed: %s", runID, out.Error)}
	}
}
