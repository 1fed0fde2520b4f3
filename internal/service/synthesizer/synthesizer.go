package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/repository/manifest"
)

const (
	// EntryPointFilename is the indirection module inside every platform package.
	EntryPointFilename = "index.js"

	// BinaryDir is the package subdirectory holding the binary.
	BinaryDir = "bin"

	// ExecutableMode is applied to bundled binaries on non-Windows platforms.
	ExecutableMode os.FileMode = 0o755

	// windowsBinaryMode is used for the win32 package, which needs no executable bit.
	windowsBinaryMode os.FileMode = 0o644

	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

var (
	// ErrSourceBinaryNotFound is returned when the built binary is absent.
	ErrSourceBinaryNotFound = errors.New("source binary not found")
	// ErrNotExecutable is returned when a bundled binary lost its executable bit.
	ErrNotExecutable = errors.New("bundled binary is not executable")
	// errArtifactNotBuilt is returned for artifacts whose build did not succeed.
	errArtifactNotBuilt = errors.New("artifact was not built successfully")
)

// ManifestWriter persists generated platform manifests.
type ManifestWriter interface {
	PackageDir(p release.Platform) string
	SavePlatform(ctx context.Context, p release.Platform, m any) error
}

// Synthesizer materialises platform packages.
type Synthesizer struct {
	cfg  *config.Config
	repo ManifestWriter
}

// New creates a Synthesizer writing packages through repo.
func New(cfg *config.Config, repo ManifestWriter) *Synthesizer {
	return &Synthesizer{
		cfg:  cfg,
		repo: repo,
	}
}

// Synthesize builds the package directory for one successfully built artifact.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	artifact release.BuildArtifact,
	version string,
) (*release.PlatformPackage, error) {
	platform := artifact.Platform
	ctx = logger.WithKV(logger.WithName(ctx, "synthesizer"), "platform", platform.ID())

	if artifact.Status != release.BuildStatusSucceeded {
		return nil, fmt.Errorf("%s: %w (status %s)", artifact.Target, errArtifactNotBuilt, artifact.Status)
	}

	if _, err := os.Stat(artifact.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", artifact.Path, ErrSourceBinaryNotFound)
		}

		return nil, fmt.Errorf("stat %s: %w", artifact.Path, err)
	}

	pkg := &release.PlatformPackage{
		Platform: platform,
		Name:     release.PackageName(s.cfg.Scope, platform),
		Dir:      s.repo.PackageDir(platform),
		Version:  version,
	}
	binaryName := s.binaryName(artifact.Target)
	pkg.BinaryPath = filepath.Join(pkg.Dir, BinaryDir, binaryName)

	logger.InfoKV(ctx, "Creating platform package", "name", pkg.Name, "dir", pkg.Dir)

	if err := s.resetDir(pkg.Dir); err != nil {
		return nil, err
	}

	if err := installBinary(artifact.Path, pkg.BinaryPath, platform); err != nil {
		return nil, fmt.Errorf("install binary for %s: %w", platform.ID(), err)
	}

	if err := s.repo.SavePlatform(ctx, platform, s.platformManifest(pkg)); err != nil {
		return nil, fmt.Errorf("write manifest for %s: %w", platform.ID(), err)
	}

	if err := writeEntryPoint(pkg.Dir, binaryName); err != nil {
		return nil, err
	}

	if err := VerifyPackage(pkg); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Platform package created", "name", pkg.Name, "version", version)

	return pkg, nil
}

// VerifyPackage checks the package against what the wrapper resolves at
// runtime: {package}/bin/{binary} exists and is executable off Windows.
func VerifyPackage(pkg *release.PlatformPackage) error {
	info, err := os.Stat(pkg.BinaryPath)
	if err != nil {
		return fmt.Errorf("verify %s: %w", pkg.Name, err)
	}

	if !pkg.Platform.IsWindows() && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s: %w", pkg.BinaryPath, ErrNotExecutable)
	}

	if _, err = os.Stat(filepath.Join(pkg.Dir, EntryPointFilename)); err != nil {
		return fmt.Errorf("verify %s: %w", pkg.Name, err)
	}

	return nil
}

// binaryName is the canonical binary name inside a package.
func (s *Synthesizer) binaryName(t release.Target) string {
	return s.cfg.BinaryName + t.Suffix
}

// resetDir recreates dir and its binary subdirectory from scratch.
func (s *Synthesizer) resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}

	if err := os.MkdirAll(filepath.Join(dir, BinaryDir), dirMode); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	return nil
}

func (s *Synthesizer) platformManifest(pkg *release.PlatformPackage) *manifest.PlatformManifest {
	return &manifest.PlatformManifest{
		Name:        pkg.Name,
		Version:     pkg.Version,
		Description: fmt.Sprintf("%s binary (%s)", s.cfg.BinaryName, pkg.Platform.ID()),
		Main:        EntryPointFilename,
		OS:          []string{pkg.Platform.OS},
		CPU:         []string{pkg.Platform.CPU},
		Repository: manifest.Repository{
			Type: "git",
			URL:  s.cfg.RepositoryURL,
		},
		License: s.cfg.License,
	}
}

// installBinary copies src to dst through go-update, which verifies the
// written bytes against the source checksum and swaps the file into place.
func installBinary(src, dst string, platform release.Platform) error {
	checksum, err := FileChecksum(src)
	if err != nil {
		return err
	}

	data, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = data.Close()
	}()

	mode := ExecutableMode
	if platform.IsWindows() {
		mode = windowsBinaryMode
	}

	// go-update renames the existing target aside, so one has to exist.
	placeholder, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) //nolint:gosec // dst is inside the package dir.
	if err != nil {
		return err
	}

	if err = placeholder.Close(); err != nil {
		return err
	}

	err = goupdate.Apply(data, goupdate.Options{
		TargetPath: dst,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	})
	if err != nil {
		return err
	}

	if platform.IsWindows() {
		return nil
	}

	// The umask may have trimmed the mode go-update created the file with.
	return os.Chmod(dst, ExecutableMode)
}

// writeEntryPoint writes the index.js that resolves to the bundled binary.
func writeEntryPoint(dir, binaryName string) error {
	contents := fmt.Sprintf("module.exports = require.resolve('./%s/%s');", BinaryDir, binaryName)
	path := filepath.Join(dir, EntryPointFilename)

	if err := os.WriteFile(path, []byte(contents), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// SynthesizeAll synthesizes every artifact in order, stopping at the first
// failure, then records the release description in the packages directory.
func (s *Synthesizer) SynthesizeAll(
	ctx context.Context,
	artifacts []release.BuildArtifact,
	version string,
) ([]release.PlatformPackage, error) {
	pkgs := make([]release.PlatformPackage, 0, len(artifacts))

	for _, artifact := range artifacts {
		pkg, err := s.Synthesize(ctx, artifact, version)
		if err != nil {
			return nil, err
		}

		pkgs = append(pkgs, *pkg)
	}

	desc, err := NewDescription(version, pkgs)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(s.cfg.PackagesPath(), dirMode); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.cfg.PackagesPath(), err)
	}

	path, err := WriteDescription(ctx, s.cfg.PackagesPath(), desc)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Release description saved", "path", path, "packages", len(pkgs))

	return pkgs, nil
}
