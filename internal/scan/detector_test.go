package scan

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file (and its parent directories) under root.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// TestDetectPackages tests the codebase walk that feeds manifests to
// detectors.
func TestDetectPackages(t *testing.T) {
	t.Parallel()

	t.Run("parses recognized manifests in walk order", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "go.mod", "module github.com/acme/billing\n\ngo 1.22\n\nrequire github.com/spf13/cobra v1.8.0\n")
		writeFile(t, root, "web/package.json", `{"name":"@acme/web","version":"1.0.0","dependencies":{"react":"^18.2.0"}}`)
		writeFile(t, root, "var/lib/dpkg/status", "Package: libssl3\nStatus: install ok installed\nVersion: 3.0.11\n")

		manifests, err := DetectPackages(context.Background(), root, DefaultDetectors(), discardTestLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(manifests) != 2 {
			t.Fatalf("expected 2 manifests, got %d: %+v", len(manifests), manifests)
		}
		if manifests[0].Ecosystem != "golang" || manifests[0].Path != "go.mod" {
			t.Errorf("unexpected first manifest %+v", manifests[0])
		}
		if manifests[1].Ecosystem != "npm" || manifests[1].Path != "web/package.json" {
			t.Errorf("unexpected second manifest %+v", manifests[1])
		}

		subject := manifests[0].Inventory.Subject
		if subject == nil || subject.ManifestPath != "go.mod" {
			t.Errorf("expected subject manifest path go.mod, got %+v", subject)
		}
		deps := manifests[1].Inventory.Dependencies
		if len(deps) != 1 || deps[0].ManifestPath != "web/package.json" {
			t.Errorf("expected dependency manifest path web/package.json, got %+v", deps)
		}
	})

	t.Run("broken manifest is skipped with a warning", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "broken/pom.xml", "<project><artifactId>unclosed</project>")
		writeFile(t, root, "go.mod", "module example.com/app\n")

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		manifests, err := DetectPackages(context.Background(), root, DefaultDetectors(), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(manifests) != 1 || manifests[0].Path != "go.mod" {
			t.Errorf("expected only go.mod manifest, got %+v", manifests)
		}
		if !bytes.Contains(buf.Bytes(), []byte("manifest skipped")) {
			t.Errorf("expected skip warning in log, got %q", buf.String())
		}
	})

	t.Run("os detectors read system package databases", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "var/lib/dpkg/status", "Package: libssl3\nStatus: install ok installed\nVersion: 3.0.11\n")
		writeFile(t, root, "go.mod", "module example.com/app\n")

		manifests, err := DetectPackages(context.Background(), root, OSDetectors(), discardTestLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(manifests) != 1 || manifests[0].Ecosystem != "deb" {
			t.Fatalf("expected one deb manifest, got %+v", manifests)
		}
		pkgs := manifests[0].Inventory.Packages
		if len(pkgs) != 1 || pkgs[0].Name != "libssl3" || pkgs[0].ManifestPath != "var/lib/dpkg/status" {
			t.Errorf("unexpected packages %+v", pkgs)
		}
	})

	t.Run("cancelled context aborts the walk", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "go.mod", "module example.com/app\n")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := DetectPackages(ctx, root, DefaultDetectors(), discardTestLogger()); err == nil {
			t.Error("expected context error, got nil")
		}
	})
}

func discardTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
