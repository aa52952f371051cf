package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at release time via -ldflags "-X main.version=...". When absent the
// binary falls back to whatever the Go toolchain embedded.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildSetting returns one key from the embedded build info, or empty when
// the binary carries no VCS stamp (go run, test binaries).
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// getVersion returns the release version, the module version from build
// info, or "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the short commit hash, suffixed with "+dirty" when the
// tree had local modifications at build time.
func getCommit() string {
	if commit != "" {
		return commit
	}
	rev := buildSetting("vcs.revision")
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if buildSetting("vcs.modified") == "true" {
		rev += "+dirty"
	}
	return rev
}

// getDate returns the commit timestamp the binary was built from.
func getDate() string {
	if date != "" {
		return date
	}
	if t := buildSetting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of codescan.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "codescan version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
		},
	}
}
