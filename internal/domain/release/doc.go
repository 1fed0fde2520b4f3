// Package release contains the core domain types of the release pipeline.
//
// It holds the fixed Target catalog with its mapping from toolchain names
// (GOOS/GOARCH) to the registry's os/cpu vocabulary, and the value types that
// flow between build, synthesis, versioning and publishing.
package release
