package publisher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/process"
)

var (
	// ErrPublishFailed is wrapped by every failed unit publish.
	ErrPublishFailed = errors.New("publish failed")
	// ErrPackageMissing is returned by the preflight when a platform package directory is absent.
	ErrPackageMissing = errors.New("platform package directory is missing")
	// ErrInvalidTag is returned for distribution tags the registry cannot accept.
	ErrInvalidTag = errors.New("invalid distribution tag")
)

// UnitError names the publish unit that failed; later units were not attempted.
type UnitError struct {
	Unit     string
	Dir      string
	ExitCode int
	Err      error
}

func (e *UnitError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("publish %s (%s): exit status %d: %v", e.Unit, e.Dir, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("publish %s (%s): %v", e.Unit, e.Dir, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// BuildFunc rebuilds and resynthesizes every platform package.
type BuildFunc func(ctx context.Context) error

// PackageLocator resolves platform package directories.
type PackageLocator interface {
	PackageDir(p release.Platform) string
	PackageExists(ctx context.Context, p release.Platform) (bool, error)
}

// Unit is one publishable directory.
type Unit struct {
	Name string
	Dir  string
}

// Publisher publishes the primary package and then every platform package.
type Publisher struct {
	cfg       *config.Config
	runner    process.Runner
	packages  PackageLocator
	build     BuildFunc
	platforms []release.Platform
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPlatforms overrides the catalog platforms.
func WithPlatforms(platforms []release.Platform) Option {
	return func(p *Publisher) {
		p.platforms = platforms
	}
}

// New creates a Publisher over the catalog platforms. build may be nil when
// every plan skips the build.
func New(cfg *config.Config, runner process.Runner, packages PackageLocator, build BuildFunc, opts ...Option) (*Publisher, error) {
	platforms, err := release.Platforms(release.Targets())
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		cfg:       cfg,
		runner:    runner,
		packages:  packages,
		build:     build,
		platforms: platforms,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// NewPlan normalizes publish inputs. An empty tag means the default tag.
func NewPlan(version string, dryRun bool, tag string, skipBuild bool) (release.PublishPlan, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = release.DefaultTag
	}

	if strings.ContainsAny(tag, " \t/") || strings.HasPrefix(tag, "-") {
		return release.PublishPlan{}, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}

	return release.PublishPlan{
		Version:   version,
		DryRun:    dryRun,
		Tag:       tag,
		SkipBuild: skipBuild,
	}, nil
}

// Args returns the registry arguments for plan. The tag flag is only passed
// when it differs from the registry default.
func Args(plan release.PublishPlan) []string {
	args := []string{"publish"}

	if plan.DryRun {
		args = append(args, "--dry-run")
	}

	if plan.Tag != "" && plan.Tag != release.DefaultTag {
		args = append(args, "--tag", plan.Tag)
	}

	return args
}

// Units lists the publish order: the primary package in the directory of
// the primary manifest, then every platform package in catalog order.
func (p *Publisher) Units() []Unit {
	units := make([]Unit, 0, len(p.platforms)+1)
	units = append(units, Unit{Name: p.cfg.Scope, Dir: filepath.Dir(p.cfg.PrimaryManifestPath())})

	for _, platform := range p.platforms {
		units = append(units, Unit{
			Name: release.PackageName(p.cfg.Scope, platform),
			Dir:  p.packages.PackageDir(platform),
		})
	}

	return units
}

// Publish optionally rebuilds, checks that every platform package exists,
// then publishes every unit serially and stops at the first failure.
// Units already published are not retracted.
func (p *Publisher) Publish(ctx context.Context, plan release.PublishPlan) error {
	ctx = logger.WithName(ctx, "publisher")

	if !plan.SkipBuild {
		if p.build == nil {
			return fmt.Errorf("%w: no build step configured", ErrPublishFailed)
		}

		logger.Info(ctx, "Rebuilding platform packages")

		if err := p.build(ctx); err != nil {
			return fmt.Errorf("rebuild before publish: %w", err)
		}
	}

	if err := p.preflight(ctx); err != nil {
		return err
	}

	args := Args(plan)

	logger.InfoKV(ctx, "Publishing packages", "version", plan.Version, "tag", plan.Tag, "dry_run", plan.DryRun)

	for _, unit := range p.Units() {
		if err := p.publishUnit(ctx, unit, args); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "All packages published", "version", plan.Version)

	return nil
}

func (p *Publisher) publishUnit(ctx context.Context, unit Unit, args []string) error {
	logger.InfoKV(ctx, "Publishing", "package", unit.Name, "dir", unit.Dir)

	result, err := p.runner.Run(ctx, process.Command{
		Name: p.cfg.Registry,
		Args: args,
		Dir:  unit.Dir,
	})
	if err != nil {
		return &UnitError{Unit: unit.Name, Dir: unit.Dir, Err: fmt.Errorf("%w: %w", ErrPublishFailed, err)}
	}

	if !result.Success() {
		return &UnitError{Unit: unit.Name, Dir: unit.Dir, ExitCode: result.ExitCode, Err: ErrPublishFailed}
	}

	logger.InfoKV(ctx, "Published", "package", unit.Name)

	return nil
}

// preflight fails before the first publish when any platform package is missing.
func (p *Publisher) preflight(ctx context.Context) error {
	var missing []string

	for _, platform := range p.platforms {
		exists, err := p.packages.PackageExists(ctx, platform)
		if err != nil {
			return err
		}

		if !exists {
			missing = append(missing, p.packages.PackageDir(platform))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrPackageMissing, strings.Join(missing, ", "))
	}

	return nil
}
