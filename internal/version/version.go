package version

import "fmt"

//nolint:gochecknoglobals // Overridden through -ldflags "-X" at release time.
var (
	// Version is the semantic version of binrelease itself.
	Version = "0.0.0-dev"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("binrelease %s (commit %s, built at %s)", Version, Commit, BuildTime)
}
