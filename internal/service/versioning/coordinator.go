package versioning

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/repository/manifest"
)

const (
	keyVersion = "version"
	keyOS      = "os"
	keyCPU     = "cpu"
)

// ErrInconsistent is returned by callers that treat divergences as failure.
var ErrInconsistent = errors.New("release manifests are inconsistent")

// Repository is the manifest storage the coordinator works on.
type Repository interface {
	PackageExists(ctx context.Context, p release.Platform) (bool, error)
	SavePrimary(ctx context.Context, primary *manifest.Primary) error
	LoadPlatform(ctx context.Context, p release.Platform) (*manifest.Document, error)
	SavePlatform(ctx context.Context, p release.Platform, m any) error
}

// Coordinator keeps the primary manifest and the platform manifests in step.
// The primary manifest is passed to every call and never cached.
type Coordinator struct {
	repo      Repository
	scope     string
	platforms []release.Platform
}

// NewCoordinator maps targets to platforms up front so unmapped targets fail
// before any manifest is touched.
func NewCoordinator(repo Repository, scope string, targets []release.Target) (*Coordinator, error) {
	platforms, err := release.Platforms(targets)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		repo:      repo,
		scope:     scope,
		platforms: platforms,
	}, nil
}

// Apply writes version into primary and its optional dependency constraints,
// saves it, then rewrites the version of every platform manifest that exists.
// Missing platform manifests are not created.
func (c *Coordinator) Apply(ctx context.Context, primary *manifest.Primary, version string) error {
	ctx = logger.WithName(ctx, "versioning")

	if err := ValidateVersion(version); err != nil {
		return err
	}

	if err := primary.SetVersion(version); err != nil {
		return fmt.Errorf("set primary version: %w", err)
	}

	if err := primary.SetConstraints(release.Constraint(version)); err != nil {
		return fmt.Errorf("set optional dependency constraints: %w", err)
	}

	if err := c.repo.SavePrimary(ctx, primary); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Primary manifest updated", "version", version)

	for _, platform := range c.platforms {
		doc, err := c.repo.LoadPlatform(ctx, platform)
		if errors.Is(err, manifest.ErrNotFound) {
			logger.DebugKV(ctx, "Platform manifest absent, skipped", "platform", platform.ID())
			continue
		}

		if err != nil {
			return err
		}

		if err = doc.Set(keyVersion, version); err != nil {
			return fmt.Errorf("set %s version: %w", platform.ID(), err)
		}

		if err = c.repo.SavePlatform(ctx, platform, doc); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Platform manifest updated", "platform", platform.ID(), "version", version)
	}

	return nil
}

// Check compares every platform package and optional dependency against
// primary without writing anything. Divergences are returned in catalog
// order, followed by constraint mismatches in manifest order.
func (c *Coordinator) Check(ctx context.Context, primary *manifest.Primary) ([]release.Divergence, error) {
	version, err := primary.Version()
	if err != nil {
		return nil, err
	}

	deps, err := primary.Dependencies()
	if err != nil {
		return nil, err
	}

	expectedConstraint := release.Constraint(version)

	var divergences []release.Divergence

	for _, platform := range c.platforms {
		found, err := c.checkPlatform(ctx, platform, version)
		if err != nil {
			return nil, err
		}

		divergences = append(divergences, found...)

		name := release.PackageName(c.scope, platform)
		if !slices.ContainsFunc(deps, func(d manifest.Dependency) bool { return d.Name == name }) {
			divergences = append(divergences, release.Divergence{
				Kind:     release.DivergenceMissingDependency,
				Entity:   name,
				Expected: expectedConstraint,
			})
		}
	}

	for _, dep := range deps {
		if dep.Constraint != expectedConstraint {
			divergences = append(divergences, release.Divergence{
				Kind:     release.DivergenceConstraintMismatch,
				Entity:   dep.Name,
				Expected: expectedConstraint,
				Actual:   dep.Constraint,
			})
		}
	}

	return divergences, nil
}

func (c *Coordinator) checkPlatform(
	ctx context.Context,
	platform release.Platform,
	version string,
) ([]release.Divergence, error) {
	name := release.PackageName(c.scope, platform)

	exists, err := c.repo.PackageExists(ctx, platform)
	if err != nil {
		return nil, err
	}

	if !exists {
		return []release.Divergence{{
			Kind:     release.DivergenceMissingPackage,
			Entity:   name,
			Expected: platform.ID(),
		}}, nil
	}

	doc, err := c.repo.LoadPlatform(ctx, platform)
	if errors.Is(err, manifest.ErrNotFound) {
		return []release.Divergence{{
			Kind:     release.DivergenceMissingPackage,
			Entity:   name,
			Expected: manifest.Filename,
		}}, nil
	}

	if err != nil {
		return nil, err
	}

	var divergences []release.Divergence

	if actual := doc.Get(keyVersion).String(); actual != version {
		divergences = append(divergences, release.Divergence{
			Kind:     release.DivergenceVersionMismatch,
			Entity:   name,
			Expected: version,
			Actual:   actual,
		})
	}

	fields := []struct {
		key, want string
	}{
		{keyOS, platform.OS},
		{keyCPU, platform.CPU},
	}
	for _, field := range fields {
		values := doc.Strings(field.key)
		if len(values) != 1 || values[0] != field.want {
			divergences = append(divergences, release.Divergence{
				Kind:     release.DivergencePlatformMismatch,
				Entity:   name + " " + field.key,
				Expected: field.want,
				Actual:   strings.Join(values, ","),
			})
		}
	}

	return divergences, nil
}

// Bump computes the version for instruction from the version in primary and
// applies it. It returns the applied version.
func (c *Coordinator) Bump(ctx context.Context, primary *manifest.Primary, instruction string) (string, error) {
	current, err := primary.Version()
	if err != nil {
		return "", err
	}

	next, err := ComputeVersion(ctx, instruction, current)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Updating version", "current", current, "new", next)

	if err = c.Apply(ctx, primary, next); err != nil {
		return "", err
	}

	return next, nil
}
