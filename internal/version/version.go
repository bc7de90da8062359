// Package version provides build and version information.
package version

import "fmt"

// Build information set via ldflags, e.g.
//
//	go build -ldflags "-X github.com/tessro/chimera/internal/version.Version=v0.3.0"
var (
	// Version is the semantic version.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// String formats the build information for display.
func String() string {
	return fmt.Sprintf("chimera %s (commit: %s, built: %s)", Version, Commit, Date)
}
