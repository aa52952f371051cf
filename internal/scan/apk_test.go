package scan

import (
	"context"
	"testing"
)

func TestApkDetector(t *testing.T) {
	t.Parallel()

	det := NewApkDetector()

	t.Run("recognize", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			path string
			want bool
		}{
			{path: "lib/apk/db/installed", want: true},
			{path: "rootfs/lib/apk/db/installed", want: true},
			{path: "installed", want: false},
			{path: "lib/apk/db/installed.bak", want: false},
		}
		for _, tc := range testCases {
			if got := det.Recognize(tc.path); got != tc.want {
				t.Errorf("Recognize(%q) = %v, want %v", tc.path, got, tc.want)
			}
		}
	})

	t.Run("parses stanza fields", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := writeFile(t, root, "lib/apk/db/installed", `C:Q1nN3L6R8y8G4=
P:musl
V:1.2.4-r2
A:x86_64
T:the musl c library

C:Q1x9Y2vA0b7c1=
P:busybox
V:1.36.1-r15
A:x86_64
`)

		inv, err := det.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		pkgs := inv.Packages
		if len(pkgs) != 2 {
			t.Fatalf("expected 2 packages, got %d: %+v", len(pkgs), pkgs)
		}
		if pkgs[0].Name != "musl" || pkgs[0].Version != "1.2.4-r2" || pkgs[0].Type != "apk" {
			t.Errorf("unexpected first package %+v", pkgs[0])
		}
		if pkgs[1].Name != "busybox" || pkgs[1].Version != "1.36.1-r15" {
			t.Errorf("unexpected second package %+v", pkgs[1])
		}
	})

	t.Run("empty database yields no packages", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := writeFile(t, root, "lib/apk/db/installed", "")

		inv, err := det.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inv.Packages) != 0 {
			t.Errorf("expected no packages, got %+v", inv.Packages)
		}
	})
}
