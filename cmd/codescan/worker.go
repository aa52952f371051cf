package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/log"
	"github.com/codescan-dev/codescan/internal/worker"
)

// NewWorkerCmd creates the worker command.
func NewWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Execute queued runs until interrupted",
		Long: `Worker polls the workspace queue and executes claimed runs on a
bounded pool. Runs queued with 'codescan run --queue' execute in the
order they were created, never more than one per project at a time.

The worker runs until interrupted. On SIGINT or SIGTERM it stops
claiming, lets in-flight runs finish their current step, and finalizes
them as stopped.

Examples:
  # Default tuning: two concurrent runs, two second polls
  codescan worker

  # Heavier host, JSON logs for collection
  codescan worker --concurrency 8 --log-json`,
		Args: cobra.NoArgs,
		RunE: runWorkerCmd,
	}

	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of runs to execute at once")
	cmd.Flags().DurationP("poll-interval", "p", config.DefaultPollInterval,
		"How often to check the queue for new runs")
	cmd.Flags().Bool("log-json", false,
		"Emit JSON log lines instead of text")

	return cmd
}

// runWorkerCmd executes the worker command.
func runWorkerCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	cfg.PollInterval, err = cmd.Flags().GetDuration("poll-interval")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := setupWorkerLogger(cfg.Verbose, logJSON)
	slog.SetDefault(logger)

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

	w := worker.NewWorker(ws, cfg.WorkspaceDir, reg,
		worker.WithConcurrency(cfg.Concurrency),
		worker.WithPollInterval(cfg.PollInterval),
		worker.WithWorkerLogger(logger),
	)

	fmt.Printf("Worker polling %s every %s (concurrency %d)\n",
		ws.Path(), cfg.PollInterval, cfg.Concurrency)
	fmt.Println("Press Ctrl+C to stop; in-flight runs finish their current step.")

	return w.Run(ctx)
}

// setupWorkerLogger builds the worker's logger. Workers are long-lived,
// so run lifecycle events log at info by default, and --log-json swaps
// the handler for machine-readable collection.
func setupWorkerLogger(verbose, logJSON bool) *slog.Logger {
	// The worker is a service, so it reports claims and completions at
	// Info even without --verbose.
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if logJSON {
		return log.NewJSONLogger(os.Stderr, level)
	}
	return log.NewLogger(os.Stderr, level)
}
