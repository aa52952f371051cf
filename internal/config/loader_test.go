package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadFile tests configuration file loading.
func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("loads pipeline defaults", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  profile: true
pipelines:
  inspect_codebase:
    groups: [fingerprint]
  map_deploy_to_develop:
    steps: [collect_resources, map_checksums]
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		inspect := cf.GetPipelineDefaults("inspect_codebase")
		if len(inspect.Groups) != 1 || inspect.Groups[0] != "fingerprint" {
			t.Errorf("unexpected groups %v", inspect.Groups)
		}
		if !inspect.Profile {
			t.Error("expected file defaults to apply to pipelines")
		}

		mapping := cf.GetPipelineDefaults("map_deploy_to_develop")
		if len(mapping.Steps) != 2 {
			t.Errorf("unexpected steps %v", mapping.Steps)
		}

		unknown := cf.GetPipelineDefaults("never_configured")
		if len(unknown.Groups) != 0 || len(unknown.Steps) != 0 {
			t.Errorf("expected bare defaults for unknown pipeline, got %+v", unknown)
		}
		if !unknown.Profile {
			t.Error("expected file defaults for unknown pipeline")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("pipelines: ["), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFindFile tests the configuration file search order.
func TestFindFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins when it exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindFile(filepath.Join(t.TempDir(), "absent.yaml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}
