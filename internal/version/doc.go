// Package version exposes build metadata of the binrelease binary.
//
// Version, Commit and BuildTime are injected with -ldflags and default to
// development values for local builds.
package version
