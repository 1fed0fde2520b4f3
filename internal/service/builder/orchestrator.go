package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/process"
)

const (
	// DefaultDirMode is used for every output directory.
	DefaultDirMode os.FileMode = 0o755
)

var (
	// ErrBuildFailed is wrapped by every failed target build.
	ErrBuildFailed = errors.New("build failed")
	// ErrArtifactMissing is returned when the toolchain succeeded but left no binary behind.
	ErrArtifactMissing = errors.New("toolchain reported success but produced no binary")
)

// TargetError identifies the target whose build failed.
type TargetError struct {
	Target   release.Target
	ExitCode int
	Err      error
}

func (e *TargetError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("build %s: exit status %d: %v", e.Target, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("build %s: %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// Orchestrator builds one binary per target.
type Orchestrator struct {
	cfg     *config.Config
	runner  process.Runner
	targets []release.Target
	printer *message.Printer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTargets overrides the catalog targets.
func WithTargets(targets []release.Target) Option {
	return func(o *Orchestrator) {
		o.targets = targets
	}
}

// NewOrchestrator creates an orchestrator over the catalog targets.
func NewOrchestrator(cfg *config.Config, runner process.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		runner:  runner,
		targets: release.Targets(),
		printer: message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// OutputPath returns where the binary for a platform is written.
func (o *Orchestrator) OutputPath(t release.Target, p release.Platform) string {
	return filepath.Join(o.cfg.BinPath(), p.ID(), o.cfg.BinaryName+t.Suffix)
}

// BuildAll cleans the bin directory and builds every target concurrently.
// It returns only after every child process has exited; if any build failed
// the artifacts are not returned and the error names every failed target.
func (o *Orchestrator) BuildAll(ctx context.Context) ([]release.BuildArtifact, error) {
	ctx = logger.WithName(ctx, "builder")

	// Unmapped targets are configuration errors and must surface before anything is touched.
	platforms, err := release.Platforms(o.targets)
	if err != nil {
		return nil, err
	}

	if err = o.Clean(ctx); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Building binaries", "targets", len(o.targets), "entry_point", o.cfg.EntryPoint)

	var (
		artifacts = make([]release.BuildArtifact, len(o.targets))
		failures  = make([]error, len(o.targets))
		group     errgroup.Group
	)

	for i, target := range o.targets {
		artifacts[i] = release.BuildArtifact{
			Target:   target,
			Platform: platforms[i],
			Path:     o.OutputPath(target, platforms[i]),
			Status:   release.BuildStatusPending,
		}

		group.Go(func() error {
			failures[i] = o.build(ctx, &artifacts[i])
			return failures[i]
		})
	}

	if err = group.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, errors.Join(failures...))
	}

	logger.InfoKV(ctx, "All binaries built", "targets", len(artifacts))

	return artifacts, nil
}

// Clean removes every platform output directory ("{os}-{cpu}") of the bin
// directory. Directories of targets no longer in the catalog are removed too;
// plain files and other directories are kept.
func (o *Orchestrator) Clean(ctx context.Context) error {
	binDir := o.cfg.BinPath()

	entries, err := os.ReadDir(binDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read %s: %w", binDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !release.IsPlatformID(entry.Name()) {
			continue
		}

		dir := filepath.Join(binDir, entry.Name())
		if err = os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}

		logger.InfoKV(ctx, "Removed stale build output", "path", dir)
	}

	return nil
}

// build runs the toolchain for one artifact and records its status.
func (o *Orchestrator) build(ctx context.Context, artifact *release.BuildArtifact) error {
	artifact.Status = release.BuildStatusFailed
	target := artifact.Target

	if err := os.MkdirAll(filepath.Dir(artifact.Path), DefaultDirMode); err != nil {
		return &TargetError{Target: target, Err: err}
	}

	logger.InfoKV(ctx, "Building", "target", target.String(), "output", artifact.Path)

	result, err := o.runner.Run(ctx, o.command(target, artifact.Path))
	if err != nil {
		return &TargetError{Target: target, Err: err}
	}

	if !result.Success() {
		return &TargetError{Target: target, ExitCode: result.ExitCode, Err: toolchainError(result)}
	}

	info, err := os.Stat(artifact.Path)
	if err != nil {
		return &TargetError{Target: target, Err: fmt.Errorf("%w: %w", ErrArtifactMissing, err)}
	}

	artifact.Status = release.BuildStatusSucceeded
	artifact.Size = info.Size()

	logger.InfoKV(ctx, "Built", "target", target.String(), "size", o.printer.Sprintf("%d bytes", info.Size()))

	return nil
}

// command assembles "go build [flags] -o <out> <entry>" with cross-compilation env.
func (o *Orchestrator) command(target release.Target, output string) process.Command {
	args := make([]string, 0, len(o.cfg.BuildFlags)+4)
	args = append(args, "build")
	args = append(args, o.cfg.BuildFlags...)
	args = append(args, "-o", output, o.cfg.EntryPoint)

	return process.Command{
		Name: o.cfg.Toolchain,
		Args: args,
		Dir:  o.cfg.Root,
		Env: []string{
			"GOOS=" + target.OS,
			"GOARCH=" + target.Arch,
			"CGO_ENABLED=0",
		},
	}
}

// toolchainError keeps the last stderr line as the diagnostic.
func toolchainError(result *process.Result) error {
	diagnostic := strings.TrimSpace(result.Stderr)
	if i := strings.LastIndexByte(diagnostic, '\n'); i >= 0 {
		diagnostic = diagnostic[i+1:]
	}

	if diagnostic == "" {
		diagnostic = "toolchain exited with a failure status"
	}

	return errors.New(diagnostic) //nolint:err113 // Diagnostic text comes from the child process.
}
