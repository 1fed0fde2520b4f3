package builder

import (
	"context"
	"fmt"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/process"
	"github.com/oshokin/binrelease/internal/repository/manifest"
	"github.com/oshokin/binrelease/internal/service/common"
	"github.com/oshokin/binrelease/internal/service/synthesizer"
)

// Options contains inputs for the build entry point.
type Options struct {
	// ConfigPath is the release settings file (defaults to binrelease.yaml).
	ConfigPath string
}

// PrimaryLoader reads the primary manifest.
type PrimaryLoader interface {
	LoadPrimary(ctx context.Context) (*manifest.Primary, error)
}

// Pipeline chains cross-compilation and package synthesis.
type Pipeline struct {
	orchestrator *Orchestrator
	synthesizer  *synthesizer.Synthesizer
	primary      PrimaryLoader
}

// NewPipeline wires a pipeline over a manifest repository.
func NewPipeline(cfg *config.Config, runner process.Runner, repo *manifest.FileRepository, opts ...Option) *Pipeline {
	return &Pipeline{
		orchestrator: NewOrchestrator(cfg, runner, opts...),
		synthesizer:  synthesizer.New(cfg, repo),
		primary:      repo,
	}
}

// Run builds every target and synthesizes their packages with the version
// currently in the primary manifest. Any failure aborts the whole run.
func (p *Pipeline) Run(ctx context.Context) ([]release.PlatformPackage, error) {
	primary, err := p.primary.LoadPrimary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load primary manifest: %w", err)
	}

	version, err := primary.Version()
	if err != nil {
		return nil, fmt.Errorf("primary manifest: %w", err)
	}

	artifacts, err := p.orchestrator.BuildAll(ctx)
	if err != nil {
		return nil, err
	}

	pkgs, err := p.synthesizer.SynthesizeAll(ctx, artifacts, version)
	if err != nil {
		return nil, fmt.Errorf("synthesize packages: %w", err)
	}

	return pkgs, nil
}

// warnConcurrentRuns is replaced in tests.
var warnConcurrentRuns = common.WarnConcurrentRuns //nolint:gochecknoglobals // Test seam.

// Run executes the build command: clean, build all targets, synthesize packages.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "build")

	warnConcurrentRuns(ctx)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	repo := manifest.NewFileRepository(cfg.PrimaryManifestPath(), cfg.PackagesPath())

	pkgs, err := NewPipeline(cfg, process.NewExecRunner(), repo).Run(ctx)
	if err != nil {
		return err
	}

	for _, pkg := range pkgs {
		logger.InfoKV(ctx, "Package ready", "name", pkg.Name, "version", pkg.Version, "dir", pkg.Dir)
	}

	logger.Info(ctx, "Build completed successfully")

	return nil
}
