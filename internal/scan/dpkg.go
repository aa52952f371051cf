package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// DpkgDetector parses the dpkg status database found in Debian-based
// filesystem images (var/lib/dpkg/status).
type DpkgDetector struct{}

// NewDpkgDetector creates a dpkg status database detector.
func NewDpkgDetector() *DpkgDetector { return &DpkgDetector{} }

// Ecosystem returns the package type identifier.
func (*DpkgDetector) Ecosystem() string { return "deb" }

// Recognize matches the dpkg status database by its full path so stray
// files named "status" elsewhere are not misread.
func (*DpkgDetector) Recognize(relPath string) bool {
	return relPath == "var/lib/dpkg/status" ||
		strings.HasSuffix(relPath, "/var/lib/dpkg/status")
}

// Parse extracts installed packages from the status database. Stanzas are
// blank-line separated; only packages whose Status line ends in
// "installed" are recorded, so removed packages with leftover config
// files are excluded.
func (*DpkgDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dpkg status: %w", err)
	}
	defer file.Close()

	inv := &Inventory{}
	var name, version string
	var installed bool
	flush := func() {
		if name != "" && installed {
			inv.Packages = append(inv.Packages, model.DiscoveredPackage{
				Type:    "deb",
				Name:    name,
				Version: version,
			})
		}
		name, version, installed = "", "", false
	}

	scanner := bufio.NewScanner(file)
	// Description fields can exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "Package: "):
			name = strings.TrimSpace(strings.TrimPrefix(line, "Package: "))
		case strings.HasPrefix(line, "Version: "):
			version = strings.TrimSpace(strings.TrimPrefix(line, "Version: "))
		case strings.HasPrefix(line, "Status: "):
			installed = strings.HasSuffix(strings.TrimSpace(line), " installed")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dpkg status: %w", err)
	}
	flush()
	return inv, nil
}
