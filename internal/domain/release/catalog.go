package release

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOS is returned when a toolchain OS has no registry identifier.
	ErrUnknownOS = errors.New("unknown operating system")
	// ErrUnknownArch is returned when a toolchain architecture has no registry identifier.
	ErrUnknownArch = errors.New("unknown architecture")
)

// Target is one (GOOS, GOARCH) pair the pipeline builds and packages.
type Target struct {
	// OS is the toolchain operating system identifier (GOOS).
	OS string
	// Arch is the toolchain CPU architecture identifier (GOARCH).
	Arch string
	// Suffix is appended to the executable name, ".exe" on Windows.
	Suffix string
}

// String renders the target as "os/arch".
func (t Target) String() string {
	return t.OS + "/" + t.Arch
}

// Platform maps the target to registry identifiers.
func (t Target) Platform() (Platform, error) {
	osID, err := MapOS(t.OS)
	if err != nil {
		return Platform{}, err
	}

	cpuID, err := MapArch(t.Arch)
	if err != nil {
		return Platform{}, err
	}

	return Platform{OS: osID, CPU: cpuID}, nil
}

// Platform is the registry-facing identity of a Target.
type Platform struct {
	// OS is the registry os identifier (darwin, linux, win32).
	OS string
	// CPU is the registry cpu identifier (x64, arm64).
	CPU string
}

// ID is the "{os}-{cpu}" form used for directory and package names.
func (p Platform) ID() string {
	return p.OS + "-" + p.CPU
}

// IsWindows reports whether binaries for this platform run without an executable bit.
func (p Platform) IsWindows() bool {
	return p.OS == "win32"
}

//nolint:gochecknoglobals // Closed, read-only tables; copies are handed out.
var (
	targets = [...]Target{
		{OS: "darwin", Arch: "amd64"},
		{OS: "darwin", Arch: "arm64"},
		{OS: "linux", Arch: "amd64"},
		{OS: "linux", Arch: "arm64"},
		{OS: "windows", Arch: "amd64", Suffix: ".exe"},
	}

	osNames = map[string]string{
		"darwin":  "darwin",
		"linux":   "linux",
		"windows": "win32",
	}

	archNames = map[string]string{
		"amd64": "x64",
		"arm64": "arm64",
	}
)

// Targets returns the fixed, ordered build targets.
func Targets() []Target {
	out := make([]Target, len(targets))
	copy(out, targets[:])

	return out
}

// MapOS returns the registry identifier for a toolchain OS name.
func MapOS(name string) (string, error) {
	id, ok := osNames[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOS, name)
	}

	return id, nil
}

// MapArch returns the registry identifier for a toolchain architecture name.
func MapArch(name string) (string, error) {
	id, ok := archNames[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownArch, name)
	}

	return id, nil
}

// Platforms maps every target to its Platform, failing on the first unmapped one.
func Platforms(ts []Target) ([]Platform, error) {
	out := make([]Platform, 0, len(ts))

	for _, t := range ts {
		p, err := t.Platform()
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", t, err)
		}

		out = append(out, p)
	}

	return out, nil
}

// IsPlatformID reports whether name has the "{os}-{cpu}" form of any
// registry identifiers, whether or not its target is still in the catalog.
func IsPlatformID(name string) bool {
	for _, osID := range osNames {
		for _, cpuID := range archNames {
			if name == osID+"-"+cpuID {
				return true
			}
		}
	}

	return false
}
