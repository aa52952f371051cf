package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// profileStep wraps a step implementation with wall-clock and allocation
// measurement. The wrapper changes nothing about the step's behavior: the
// returned error passes through unchanged, and a failing step still gets
// its timing recorded up to the failure point.
//
// Profiling is a run-level switch applied uniformly to every selected
// step, never per-step, so profiled runs remain comparable end to end.
func profileStep(spec StepSpec, run StepFunc, rec Recorder) StepFunc {
	return func(ctx context.Context) error {
		var before runtime.MemStats
		runtime.ReadMemStats(&before)
		start := time.Now()

		err := run(ctx)

		elapsed := time.Since(start)
		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		allocated := after.TotalAlloc - before.TotalAlloc

		rec.AppendLog(fmt.Sprintf("[profile] %s: %s, %s allocated",
			spec.Name, elapsed.Round(time.Microsecond), humanize.Bytes(allocated)))
		return err
	}
}
