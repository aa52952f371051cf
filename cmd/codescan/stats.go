package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/spf13/cobra"

	"github.com/codescan-dev/codescan/internal/database"
)

// Histogram bounds for step durations: one microsecond to one hour at
// three significant figures. Steps running longer than an hour saturate
// at the top bucket instead of failing to record.
const (
	minTrackableMicros = int64(1)
	maxTrackableMicros = int64(time.Hour / time.Microsecond)
	histogramSigFigs   = 3
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [pipeline]",
		Short: "Show step duration statistics",
		Long: `Stats aggregates the recorded durations of every executed pipeline
step into percentiles. Use it to find which steps dominate run time
before reaching for profiling.

With a pipeline argument only that pipeline's steps are shown.

Examples:
  # Timings across every pipeline
  codescan stats

  # Timings for one pipeline
  codescan stats inspect_codebase

  # Machine-readable statistics
  codescan stats --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatsCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output statistics in JSON format")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
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

	var pipelineFilter string
	if len(args) == 1 {
		pipelineFilter = args[0]
	}

	timings, err := ws.StepTimings(cmd.Context(), pipelineFilter)
	if err != nil {
		return err
	}

	stats := aggregateTimings(timings)
	out := cmd.OutOrStdout()

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	}

	renderStatsText(out, pipelineFilter, stats)
	return nil
}

// stepStats is the aggregated view of one step's recorded executions.
// Durations are microseconds so JSON consumers get integers.
type stepStats struct {
	Pipeline string `json:"pipeline"`
	Step     string `json:"step"`
	Count    int64  `json:"count"`
	Failures int64  `json:"failures"`
	P50      int64  `json:"p50_us"`
	P90      int64  `json:"p90_us"`
	P99      int64  `json:"p99_us"`
	Max      int64  `json:"max_us"`
	Mean     int64  `json:"mean_us"`
}

// aggregateTimings folds raw step timings into per-step percentile
// statistics. HDR histograms keep the aggregation memory bounded no
// matter how many runs the workspace has recorded.
func aggregateTimings(timings []database.StepTiming) []stepStats {
	type key struct{ pipeline, step string }

	hists := make(map[key]*hdrhistogram.Histogram)
	failures := make(map[key]int64)
	keys := make([]key, 0)

	for _, timing := range timings {
		k := key{timing.Pipeline, timing.Step}
		h, ok := hists[k]
		if !ok {
			h = hdrhistogram.New(minTrackableMicros, maxTrackableMicros, histogramSigFigs)
			hists[k] = h
			keys = append(keys, k)
		}

		us := timing.Elapsed.Microseconds()
		if us < minTrackableMicros {
			us = minTrackableMicros
		}
		if us > maxTrackableMicros {
			us = maxTrackableMicros
		}
		_ = h.RecordValue(us) //nolint:errcheck // value clamped to the trackable range

		if !timing.Succeeded {
			failures[k]++
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pipeline != keys[j].pipeline {
			return keys[i].pipeline < keys[j].pipeline
		}
		return keys[i].step < keys[j].step
	})

	stats := make([]stepStats, 0, len(keys))
	for _, k := range keys {
		h := hists[k]
		stats = append(stats, stepStats{
			Pipeline: k.pipeline,
			Step:     k.step,
			Count:    h.TotalCount(),
			Failures: failures[k],
			P50:      h.ValueAtQuantile(50),
			P90:      h.ValueAtQuantile(90),
			P99:      h.ValueAtQuantile(99),
			Max:      h.Max(),
			Mean:     int64(h.Mean()),
		})
	}
	return stats
}

// renderStatsText prints the statistics table.
func renderStatsText(out io.Writer, pipelineFilter string, stats []stepStats) {
	if len(stats) == 0 {
		fmt.Fprintln(out, "No step timings recorded.")
		fmt.Fprintln(out, "\nEvery executed pipeline step records its duration; run a pipeline first.")
		return
	}

	if pipelineFilter != "" {
		fmt.Fprintf(out, "Step timings for %s:\n\n", pipelineFilter)
	} else {
		fmt.Fprintf(out, "Step timings (all pipelines):\n\n")
	}

	fmt.Fprintf(out, "  %-22s  %-26s  %6s  %5s  %-10s  %-10s  %-10s  %s\n",
		"PIPELINE", "STEP", "COUNT", "FAIL", "P50", "P90", "P99", "MAX")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 108))
	for _, s := range stats {
		fmt.Fprintf(out, "  %-22s  %-26s  %6d  %5d  %-10s  %-10s  %-10s  %s\n",
			s.Pipeline, s.Step, s.Count, s.Failures,
			formatMicros(s.P50), formatMicros(s.P90), formatMicros(s.P99), formatMicros(s.Max))
	}
}

// formatMicros renders a microsecond count as a human duration.
func formatMicros(us int64) string {
	return (time.Duration(us) * time.Microsecond).String()
}
