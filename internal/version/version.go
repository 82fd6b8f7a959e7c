// Package version provides build-time version information.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	// Version is the semantic version.
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)

// Full returns the version with build metadata, for logs and the About
// dialog.
func Full() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
