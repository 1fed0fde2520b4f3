package publisher

import (
	"context"
	"fmt"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/process"
	"github.com/oshokin/binrelease/internal/repository/manifest"
	"github.com/oshokin/binrelease/internal/service/builder"
	"github.com/oshokin/binrelease/internal/service/common"
	"github.com/oshokin/binrelease/internal/service/versioning"
)

// Options contains inputs for the publish entry point.
type Options struct {
	// ConfigPath is the release settings file.
	ConfigPath string
	// Instruction is major, minor, patch or an explicit x.y.z version.
	Instruction string
	// DryRun passes --dry-run to the registry; versions are still written locally.
	DryRun bool
	// Tag is the distribution tag, "latest" when empty.
	Tag string
	// SkipBuild publishes the packages already on disk.
	SkipBuild bool
	// Runner executes the toolchain and registry commands; an ExecRunner when nil.
	Runner process.Runner
}

// Run computes and applies the new version, then rebuilds and publishes.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "publish")

	common.WarnConcurrentRuns(ctx)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Tag problems are configuration errors and must surface before versions are written.
	plan, err := NewPlan("", opts.DryRun, opts.Tag, opts.SkipBuild)
	if err != nil {
		return err
	}

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	repo := manifest.NewFileRepository(cfg.PrimaryManifestPath(), cfg.PackagesPath())

	coordinator, err := versioning.NewCoordinator(repo, cfg.Scope, release.Targets())
	if err != nil {
		return err
	}

	primary, err := repo.LoadPrimary(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Preparing release", "package", primary.Name(), "instruction", opts.Instruction)

	if plan.DryRun {
		logger.Warn(ctx, "Dry run: versions are written locally, the registry is not modified")
	}

	plan.Version, err = coordinator.Bump(ctx, primary, opts.Instruction)
	if err != nil {
		return err
	}

	pipeline := builder.NewPipeline(cfg, runner, repo)
	build := func(ctx context.Context) error {
		_, err := pipeline.Run(ctx)
		return err
	}

	publisher, err := New(cfg, runner, repo, build)
	if err != nil {
		return err
	}

	if err = publisher.Publish(ctx, plan); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Release completed", "version", plan.Version)

	return nil
}

// Usage is printed when publish is invoked without a version instruction.
func Usage() string {
	return fmt.Sprintf(`Usage: binrelease publish <patch|minor|major|x.y.z> [flags]

Version instructions:
  patch      bump the patch version (x.y.Z+1)
  minor      bump the minor version (x.Y+1.0)
  major      bump the major version (X+1.0.0)
  x.y.z      set an explicit version

Flags:
  --dry-run     simulate the publish, versions are still updated locally
  --tag <tag>   distribution tag (default: %s)
  --no-build    skip rebuilding the platform packages

Examples:
  binrelease publish patch
  binrelease publish minor --dry-run
  binrelease publish 1.2.3 --tag beta
`, release.DefaultTag)
}
