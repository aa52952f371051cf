package model

import (
	"testing"
	"time"
)

// TestRunStatusString tests the String method of RunStatus.
func TestRunStatusString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   RunStatus
		expected string
	}{
		{RunNotStarted, "not_started"},
		{RunQueued, "queued"},
		{RunRunning, "running"},
		{RunSuccess, "success"},
		{RunFailure, "failure"},
		{RunStopped, "stopped"},
		{RunStatus(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.status.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.status.String(), tc.expected)
			}
		})
	}
}

// TestParseRunStatus tests that ParseRunStatus inverts String for every
// status and degrades unknown strings to RunNotStarted.
func TestParseRunStatus(t *testing.T) {
	t.Parallel()

	statuses := []RunStatus{
		RunNotStarted, RunQueued, RunRunning, RunSuccess, RunFailure, RunStopped,
	}
	for _, status := range statuses {
		t.Run(status.String(), func(t *testing.T) {
			t.Parallel()
			if got := ParseRunStatus(status.String()); got != status {
				t.Errorf("ParseRunStatus(%q) = %v, expected %v", status.String(), got, status)
			}
		})
	}

	t.Run("unknown string", func(t *testing.T) {
		t.Parallel()
		if got := ParseRunStatus("exploded"); got != RunNotStarted {
			t.Errorf("ParseRunStatus(\"exploded\") = %v, expected RunNotStarted", got)
		}
	})
}

// TestRunStatusTerminal tests the Terminal method of RunStatus.
func TestRunStatusTerminal(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   RunStatus
		expected bool
	}{
		{RunNotStarted, false},
		{RunQueued, false},
		{RunRunning, false},
		{RunSuccess, true},
		{RunFailure, true},
		{RunStopped, true},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			t.Parallel()
			if tc.status.Terminal() != tc.expected {
				t.Errorf("Terminal() = %v, expected %v", tc.status.Terminal(), tc.expected)
			}
		})
	}
}

// TestRunDuration tests the Duration method of Run.
func TestRunDuration(t *testing.T) {
	t.Parallel()

	t.Run("finalized run", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		run := &Run{StartedAt: start, EndedAt: start.Add(90 * time.Second)}
		if run.Duration() != 90*time.Second {
			t.Errorf("got %v, expected 90s", run.Duration())
		}
	})

	t.Run("unstarted run has zero duration", func(t *testing.T) {
		t.Parallel()

		run := &Run{}
		if run.Duration() != 0 {
			t.Errorf("got %v, expected 0", run.Duration())
		}
	})

	t.Run("running run has zero duration", func(t *testing.T) {
		t.Parallel()

		run := &Run{StartedAt: time.Now()}
		if run.Duration() != 0 {
			t.Errorf("got %v, expected 0", run.Duration())
		}
	})
}
