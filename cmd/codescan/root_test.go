package main

import (
	"errors"
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "codescan" {
			t.Errorf("expected use 'codescan', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has workspace flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("workspace")
		if flag == nil {
			t.Fatal("expected workspace flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
		if flag.DefValue == "" {
			t.Error("expected non-empty default workspace directory")
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		subcommands := cmd.Commands()
		if len(subcommands) == 0 {
			t.Error("expected subcommands")
		}

		// Check for the run, create, and worker commands
		hasRun := false
		hasCreate := false
		hasWorker := false
		for _, sub := range subcommands {
			if sub.Use == "run [pipeline] [project]" {
				hasRun = true
			}
			if sub.Use == "create [project]" {
				hasCreate = true
			}
			if sub.Use == "worker" {
				hasWorker = true
			}
		}
		if !hasRun {
			t.Error("expected run subcommand")
		}
		if !hasCreate {
			t.Error("expected create subcommand")
		}
		if !hasWorker {
			t.Error("expected worker subcommand")
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

// TestExitError tests the exit code carrying error.
func TestExitError(t *testing.T) {
	t.Parallel()

	t.Run("carries message", func(t *testing.T) {
		t.Parallel()
		err := &exitError{code: 99, msg: "run stopped"}
		if err.Error() != "run stopped" {
			t.Errorf("expected 'run stopped', got %q", err.Error())
		}
	})

	t.Run("unwraps through errors.As", func(t *testing.T) {
		t.Parallel()
		var err error = &exitError{code: 1, msg: "run failed"}

		var ee *exitError
		if !errors.As(err, &ee) {
			t.Fatal("expected errors.As to match *exitError")
		}
		if ee.code != 1 {
			t.Errorf("expected code 1, got %d", ee.code)
		}
	})
}
