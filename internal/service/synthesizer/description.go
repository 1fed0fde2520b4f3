package synthesizer

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/service/common"
)

// DescriptionFilename is written next to the platform package directories.
const DescriptionFilename = "release.yaml"

// Description records what a pipeline run produced.
type Description struct {
	// Version is the release version written into every manifest.
	Version string `yaml:"version"`
	// BuiltAt is the UTC time the description was written.
	BuiltAt time.Time `yaml:"built_at"`
	// BuiltBy identifies the machine and user that ran the build.
	BuiltBy *common.Actor `yaml:"built_by,omitempty"`
	// Packages maps platform identifiers to their bundled binary digest.
	Packages map[string]PackageDigest `yaml:"packages"`
}

// PackageDigest is the checksum record of one platform package.
type PackageDigest struct {
	Name   string `yaml:"name"`
	Binary string `yaml:"binary"`
	SHA512 string `yaml:"sha512"`
}

// NewDescription computes checksums of every bundled binary.
func NewDescription(version string, pkgs []release.PlatformPackage) (*Description, error) {
	desc := &Description{
		Version:  version,
		BuiltAt:  time.Now().UTC().Truncate(time.Second),
		Packages: make(map[string]PackageDigest, len(pkgs)),
	}

	for _, pkg := range pkgs {
		checksum, err := FileChecksum(pkg.BinaryPath)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", pkg.BinaryPath, err)
		}

		binary, err := filepath.Rel(pkg.Dir, pkg.BinaryPath)
		if err != nil {
			return nil, err
		}

		desc.Packages[pkg.Platform.ID()] = PackageDigest{
			Name:   pkg.Name,
			Binary: filepath.ToSlash(binary),
			SHA512: base64.StdEncoding.EncodeToString(checksum),
		}
	}

	return desc, nil
}

// WriteDescription saves desc as YAML into dir.
func WriteDescription(ctx context.Context, dir string, desc *Description) (string, error) {
	if actor, err := common.DetectActor(); err == nil {
		desc.BuiltBy = actor
	} else {
		logger.DebugKV(ctx, "Unable to detect build actor", "error", err)
	}

	contents, err := yaml.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("marshal release description: %w", err)
	}

	path := filepath.Join(dir, DescriptionFilename)
	if err = os.WriteFile(path, contents, fileMode); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}

// ReadDescription loads a release description written by WriteDescription.
func ReadDescription(path string) (*Description, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var desc Description
	if err = yaml.Unmarshal(contents, &desc); err != nil {
		return nil, fmt.Errorf("unmarshal release description: %w", err)
	}

	return &desc, nil
}
