package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// DirectoryFingerprints computes a content fingerprint for every directory
// of the codebase: the sha256 over the sorted "relative-path:digest" lines
// of all files beneath it. Two directories with identical content trees
// produce identical fingerprints regardless of where they live, which is
// what makes fingerprints usable for matching vendored or copied trees.
//
// The codebase root is keyed as ".". Files without a digest (oversized or
// unreadable) are left out of every fingerprint.
func DirectoryFingerprints(resources []model.CodebaseResource) map[string]string {
	entries := make(map[string][]string)
	for _, res := range resources {
		if res.SHA256 == "" {
			continue
		}
		dir := path.Dir(res.Path)
		for {
			relToDir := res.Path
			if dir != "." {
				relToDir = strings.TrimPrefix(res.Path, dir+"/")
			}
			entries[dir] = append(entries[dir], relToDir+":"+res.SHA256)
			if dir == "." {
				break
			}
			dir = path.Dir(dir)
		}
	}

	fingerprints := make(map[string]string, len(entries))
	for dir, lines := range entries {
		sort.Strings(lines)
		hash := sha256.New()
		for _, line := range lines {
			fmt.Fprintln(hash, line)
		}
		fingerprints[dir] = hex.EncodeToString(hash.Sum(nil))
	}
	return fingerprints
}
