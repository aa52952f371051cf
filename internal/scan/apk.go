package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// ApkDetector parses the apk installed database found in Alpine-based
// filesystem images (lib/apk/db/installed).
type ApkDetector struct{}

// NewApkDetector creates an apk installed database detector.
func NewApkDetector() *ApkDetector { return &ApkDetector{} }

// Ecosystem returns the package type identifier.
func (*ApkDetector) Ecosystem() string { return "apk" }

// Recognize matches the apk installed database by its full path.
func (*ApkDetector) Recognize(relPath string) bool {
	return relPath == "lib/apk/db/installed" ||
		strings.HasSuffix(relPath, "/lib/apk/db/installed")
}

// Parse extracts installed packages. The database is a sequence of
// blank-line separated stanzas of single-letter fields; P is the package
// name and V its version.
func (*ApkDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open apk database: %w", err)
	}
	defer file.Close()

	inv := &Inventory{}
	var name, version string
	flush := func() {
		if name != "" {
			inv.Packages = append(inv.Packages, model.DiscoveredPackage{
				Type:    "apk",
				Name:    name,
				Version: version,
			})
		}
		name, version = "", ""
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "P:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "P:"))
		case strings.HasPrefix(line, "V:"):
			version = strings.TrimSpace(strings.TrimPrefix(line, "V:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read apk database: %w", err)
	}
	flush()
	return inv, nil
}
