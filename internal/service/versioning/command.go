package versioning

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/repository/manifest"
	"github.com/oshokin/binrelease/internal/service/common"
)

// warnConcurrentRuns is replaced in tests.
var warnConcurrentRuns = common.WarnConcurrentRuns //nolint:gochecknoglobals // Test seam.

// BumpOptions contains inputs for the bump entry point.
type BumpOptions struct {
	// ConfigPath is the release settings file.
	ConfigPath string
	// Instruction is major, minor, patch or an explicit x.y.z version.
	Instruction string
}

// CheckOptions contains inputs for the check entry point.
type CheckOptions struct {
	// ConfigPath is the release settings file.
	ConfigPath string
	// Output receives the report; stdout when nil.
	Output io.Writer
}

// RunBump computes the next version and writes it into every manifest.
func RunBump(ctx context.Context, opts *BumpOptions) error {
	ctx = logger.WithName(ctx, "bump")

	warnConcurrentRuns(ctx)

	coordinator, primary, err := setup(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	version, err := coordinator.Bump(ctx, primary, opts.Instruction)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Version updated", "version", version)

	return nil
}

// RunCheck prints a consistency report and returns ErrInconsistent when any
// divergence is found.
func RunCheck(ctx context.Context, opts *CheckOptions) error {
	ctx = logger.WithName(ctx, "check")

	coordinator, primary, err := setup(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	divergences, err := coordinator.Check(ctx, primary)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	version, _ := primary.Version()
	if err = WriteReport(out, version, divergences); err != nil {
		return err
	}

	if len(divergences) > 0 {
		return fmt.Errorf("%w: %d divergence(s)", ErrInconsistent, len(divergences))
	}

	return nil
}

// WriteReport renders divergences for an operator.
func WriteReport(w io.Writer, version string, divergences []release.Divergence) error {
	if _, err := fmt.Fprintf(w, "Primary version: %s\n", version); err != nil {
		return err
	}

	for _, d := range divergences {
		if _, err := fmt.Fprintf(w, "  %s\n", d); err != nil {
			return err
		}
	}

	var err error
	if len(divergences) == 0 {
		_, err = fmt.Fprintln(w, "All versions are consistent.")
	} else {
		_, err = fmt.Fprintf(w, "Found %d divergence(s); run bump or build to fix them.\n", len(divergences))
	}

	return err
}

// setup loads settings and the primary manifest and builds a coordinator over the catalog.
func setup(ctx context.Context, configPath string) (*Coordinator, *manifest.Primary, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	repo := manifest.NewFileRepository(cfg.PrimaryManifestPath(), cfg.PackagesPath())

	coordinator, err := NewCoordinator(repo, cfg.Scope, release.Targets())
	if err != nil {
		return nil, nil, err
	}

	primary, err := repo.LoadPrimary(ctx)
	if err != nil {
		return nil, nil, err
	}

	return coordinator, primary, nil
}
