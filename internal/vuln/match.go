package vuln

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/codescan-dev/codescan/internal/model"
)

// Match returns one finding per advisory affecting one of the packages.
// Findings keep the order of the packages slice so persisted results are
// stable across runs.
func Match(advisories []model.Advisory, packages []model.DiscoveredPackage) []model.VulnerabilityFinding {
	var findings []model.VulnerabilityFinding
	for _, pkg := range packages {
		for _, adv := range advisories {
			if !affects(adv, pkg) {
				continue
			}
			findings = append(findings, model.VulnerabilityFinding{
				ProjectID:   pkg.ProjectID,
				PackageID:   pkg.ID,
				PackagePURL: pkg.PURL(),
				AdvisoryID:  adv.ID,
				Summary:     adv.Summary,
				Severity:    adv.Severity,
			})
		}
	}
	return findings
}

func affects(adv model.Advisory, pkg model.DiscoveredPackage) bool {
	if !strings.EqualFold(adv.Package.Type, pkg.Type) {
		return false
	}
	if adv.Package.Namespace != pkg.Namespace || adv.Package.Name != pkg.Name {
		return false
	}
	// A package without a resolved version cannot be placed in any range.
	if pkg.Version == "" {
		return false
	}
	return versionAffected(adv, pkg.Version)
}

// versionAffected checks the explicit version list first, then the
// half-open [Introduced, Fixed) range. An advisory carrying neither
// constraint affects every version of the package.
func versionAffected(adv model.Advisory, version string) bool {
	if slices.Contains(adv.Versions, version) {
		return true
	}
	hasRange := adv.Affected.Introduced != "" || adv.Affected.Fixed != ""
	if !hasRange {
		return len(adv.Versions) == 0
	}
	if adv.Affected.Introduced != "" && compareVersions(version, adv.Affected.Introduced) < 0 {
		return false
	}
	if adv.Affected.Fixed != "" && compareVersions(version, adv.Affected.Fixed) >= 0 {
		return false
	}
	return true
}

// compareVersions orders two version strings. Valid semver pairs get a
// real semver comparison; everything else falls back to segment-wise
// ordering, which is approximate but adequate for advisory ranges over
// distro and registry version schemes.
func compareVersions(a, b string) int {
	va, vb := "v"+strings.TrimPrefix(a, "v"), "v"+strings.TrimPrefix(b, "v")
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return compareSegments(a, b)
}

// versionSeparators splits a version into comparable segments.
var versionSeparators = func(r rune) bool {
	return r == '.' || r == '-' || r == '_' || r == '~' || r == '+' || r == ':'
}

// compareSegments compares versions segment by segment. Numeric segments
// compare numerically; when only one side is numeric the non-numeric
// side sorts first, so pre-release tags order before their release.
// Missing segments count as zero ("1.2" equals "1.2.0").
func compareSegments(a, b string) int {
	as := strings.FieldsFunc(strings.TrimPrefix(a, "v"), versionSeparators)
	bs := strings.FieldsFunc(strings.TrimPrefix(b, "v"), versionSeparators)

	for i := 0; i < len(as) || i < len(bs); i++ {
		sa, sb := "0", "0"
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}

		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				return cmp.Compare(na, nb)
			}
		case errA == nil:
			return 1
		case errB == nil:
			return -1
		default:
			if sa != sb {
				return strings.Compare(sa, sb)
			}
		}
	}
	return 0
}
