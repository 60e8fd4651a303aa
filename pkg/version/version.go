// Package version exposes build-time version information.
package version

import "fmt"

// Build metadata, overridden at link time via -ldflags.
var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the full version line printed by the version command.
func String() string {
	return fmt.Sprintf("gitkarma %s (commit: %s, built: %s)", Version, Commit, Date)
}
