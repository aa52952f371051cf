package scan

import (
	"strings"
	"testing"
)

func TestParseOSRelease(t *testing.T) {
	t.Parallel()

	t.Run("strips quotes and ignores comments", func(t *testing.T) {
		t.Parallel()

		input := `PRETTY_NAME="Debian GNU/Linux 12 (bookworm)"
NAME="Debian GNU/Linux"
VERSION_ID="12"
# maintainer note
ID=debian
HOME_URL="https://www.debian.org/"
`
		info, err := ParseOSRelease(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.ID != "debian" {
			t.Errorf("expected id debian, got %q", info.ID)
		}
		if info.Name != "Debian GNU/Linux" {
			t.Errorf("unexpected name %q", info.Name)
		}
		if info.VersionID != "12" {
			t.Errorf("unexpected version id %q", info.VersionID)
		}
		if info.PrettyName != "Debian GNU/Linux 12 (bookworm)" {
			t.Errorf("unexpected pretty name %q", info.PrettyName)
		}
	})

	t.Run("single quotes are accepted", func(t *testing.T) {
		t.Parallel()

		info, err := ParseOSRelease(strings.NewReader("ID='alpine'\nVERSION_ID=3.19.1\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.ID != "alpine" || info.VersionID != "3.19.1" {
			t.Errorf("unexpected fields %+v", info)
		}
	})
}

func TestDetectOS(t *testing.T) {
	t.Parallel()

	t.Run("reads etc os-release", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "etc/os-release", "ID=debian\nVERSION_ID=\"12\"\n")

		info, err := DetectOS(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info == nil || info.ID != "debian" || info.VersionID != "12" {
			t.Errorf("unexpected os info %+v", info)
		}
	})

	t.Run("falls back to usr lib os-release", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "usr/lib/os-release", "ID=alpine\n")

		info, err := DetectOS(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info == nil || info.ID != "alpine" {
			t.Errorf("unexpected os info %+v", info)
		}
	})

	t.Run("absent files report no operating system", func(t *testing.T) {
		t.Parallel()

		info, err := DetectOS(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info != nil {
			t.Errorf("expected nil os info, got %+v", info)
		}
	})
}
