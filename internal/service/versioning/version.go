package versioning

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/oshokin/binrelease/internal/logger"
)

// BumpClass names a semantic version increment.
type BumpClass string

// Supported bump classes.
const (
	BumpMajor BumpClass = "major"
	BumpMinor BumpClass = "minor"
	BumpPatch BumpClass = "patch"
)

var (
	// ErrInvalidVersion is returned for versions that are not strict "x.y.z".
	ErrInvalidVersion = errors.New("invalid version")
	// ErrUnknownBumpClass is returned for words other than major, minor and patch.
	ErrUnknownBumpClass = errors.New("unknown bump class")
)

// Prerelease and build suffixes are rejected.
var strictVersion = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidateVersion checks that v is a strict "x.y.z" version.
func ValidateVersion(v string) error {
	if !strictVersion.MatchString(v) {
		return fmt.Errorf("%w: %q (expected x.y.z)", ErrInvalidVersion, v)
	}

	return nil
}

// ComputeVersion resolves instruction against current. The instruction is
// either a bump class or an explicit "x.y.z" version. A result that is not
// greater than current is allowed but logged as a warning.
func ComputeVersion(ctx context.Context, instruction, current string) (string, error) {
	instruction = strings.TrimSpace(instruction)

	var next string

	switch class := BumpClass(instruction); class {
	case BumpMajor, BumpMinor, BumpPatch:
		v, err := parseVersion(current)
		if err != nil {
			return "", fmt.Errorf("current version: %w", err)
		}

		next = bump(*v, class).String()
	default:
		if !strings.ContainsAny(instruction, "0123456789") {
			return "", fmt.Errorf("%w: %q (expected major, minor, patch or x.y.z)", ErrUnknownBumpClass, instruction)
		}

		if err := ValidateVersion(instruction); err != nil {
			return "", err
		}

		next = instruction
	}

	if !isUpgrade(current, next) {
		logger.WarnKV(ctx, "New version is not greater than the current one", "current", current, "new", next)
	}

	return next, nil
}

// parseVersion reads the three numeric components of a strict "x.y.z"
// version. Leading zeros are accepted and dropped.
func parseVersion(v string) (*semver.Version, error) {
	if err := ValidateVersion(v); err != nil {
		return nil, err
	}

	var parts [3]uint64

	for i, field := range strings.Split(v, ".") {
		n, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, v, err)
		}

		parts[i] = n
	}

	return semver.New(parts[0], parts[1], parts[2], "", ""), nil
}

func bump(v semver.Version, class BumpClass) semver.Version {
	switch class {
	case BumpMajor:
		return v.IncMajor()
	case BumpMinor:
		return v.IncMinor()
	default:
		return v.IncPatch()
	}
}

// isUpgrade reports whether next is greater than current. An unparsable
// current version never blocks an explicit one.
func isUpgrade(current, next string) bool {
	cur, err := parseVersion(current)
	if err != nil {
		return true
	}

	nv, err := parseVersion(next)
	if err != nil {
		return false
	}

	return nv.GreaterThan(cur)
}
