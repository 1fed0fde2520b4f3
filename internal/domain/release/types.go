package release

import "fmt"

// BuildStatus is the outcome of one toolchain invocation.
type BuildStatus string

// Build statuses.
const (
	BuildStatusPending   BuildStatus = "pending"
	BuildStatusSucceeded BuildStatus = "succeeded"
	BuildStatusFailed    BuildStatus = "failed"
)

// BuildArtifact is the binary produced for one Target.
type BuildArtifact struct {
	Target   Target
	Platform Platform
	// Path is the absolute output path of the binary.
	Path   string
	Status BuildStatus
	// Size of the binary in bytes, set on success.
	Size int64
}

// PlatformPackage is a synthesized, publishable platform unit.
type PlatformPackage struct {
	Platform Platform
	// Name is the registry package name, "{scope}-{os}-{cpu}".
	Name string
	// Dir is the absolute package directory.
	Dir string
	// BinaryPath is the absolute path of the bundled binary.
	BinaryPath string
	// Version written into the package manifest.
	Version string
}

// PublishPlan describes one publish invocation.
type PublishPlan struct {
	Version   string
	DryRun    bool
	Tag       string
	SkipBuild bool
}

// DefaultTag is the registry's default distribution tag.
const DefaultTag = "latest"

// DivergenceKind classifies a consistency problem.
type DivergenceKind string

// Divergence kinds.
const (
	DivergenceMissingPackage     DivergenceKind = "missing-package"
	DivergenceVersionMismatch    DivergenceKind = "version-mismatch"
	DivergenceConstraintMismatch DivergenceKind = "constraint-mismatch"
	DivergenceMissingDependency  DivergenceKind = "missing-dependency"
	DivergencePlatformMismatch   DivergenceKind = "platform-mismatch"
)

// Divergence is one mismatch between the primary manifest and the rest of the release.
type Divergence struct {
	Kind DivergenceKind
	// Entity names the platform package or dependency concerned.
	Entity   string
	Expected string
	Actual   string
}

// String renders the divergence for reports.
func (d Divergence) String() string {
	return fmt.Sprintf("%s: %s (expected %q, actual %q)", d.Kind, d.Entity, d.Expected, d.Actual)
}

// PackageName builds the platform package name for a scope.
func PackageName(scope string, p Platform) string {
	return scope + "-" + p.ID()
}

// Constraint is the optional dependency range pinned to a version.
func Constraint(version string) string {
	return "^" + version
}
