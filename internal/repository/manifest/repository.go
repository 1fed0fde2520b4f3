package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/binrelease/internal/domain/release"
)

const (
	// Filename is the manifest filename inside every package directory.
	Filename = "package.json"

	// DefaultFileMode is used for every manifest written.
	DefaultFileMode os.FileMode = 0o644
)

// ErrNotFound is returned when a manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// FileRepository reads and writes manifests under a project tree.
type FileRepository struct {
	// primaryPath is the path of the primary package.json.
	primaryPath string
	// packagesDir holds one directory per platform package.
	packagesDir string
	// mu serialises file access.
	mu sync.Mutex
}

// NewFileRepository creates a repository for the given primary manifest and packages directory.
func NewFileRepository(primaryPath, packagesDir string) *FileRepository {
	return &FileRepository{
		primaryPath: filepath.Clean(primaryPath),
		packagesDir: filepath.Clean(packagesDir),
	}
}

// PackageDir returns the directory of a platform package.
func (r *FileRepository) PackageDir(p release.Platform) string {
	return filepath.Join(r.packagesDir, p.ID())
}

// PackageExists reports whether a platform package directory exists.
func (r *FileRepository) PackageExists(_ context.Context, p release.Platform) (bool, error) {
	info, err := os.Stat(r.PackageDir(p))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("stat package %s: %w", p.ID(), err)
	}

	return info.IsDir(), nil
}

// LoadPrimary reads the primary manifest.
func (r *FileRepository) LoadPrimary(_ context.Context) (*Primary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.read(r.primaryPath)
	if err != nil {
		return nil, err
	}

	primary, err := ParsePrimary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.primaryPath, err)
	}

	return primary, nil
}

// SavePrimary writes the primary manifest.
func (r *FileRepository) SavePrimary(_ context.Context, primary *Primary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write(r.primaryPath, primary)
}

// LoadPlatform reads a platform manifest as an ordered document.
func (r *FileRepository) LoadPlatform(_ context.Context, p release.Platform) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.PackageDir(p), Filename)

	data, err := r.read(path)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// SavePlatform writes a platform manifest. Generated *PlatformManifest values
// are validated against the schema first.
func (r *FileRepository) SavePlatform(_ context.Context, p release.Platform, m any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if generated, ok := m.(*PlatformManifest); ok {
		data, err := Encode(generated)
		if err != nil {
			return fmt.Errorf("encode platform manifest: %w", err)
		}

		result, err := Validate(data)
		if err != nil {
			return err
		}

		if err = result.Err(); err != nil {
			return fmt.Errorf("%s: %w", p.ID(), err)
		}
	}

	return r.write(filepath.Join(r.PackageDir(p), Filename), m)
}

func (r *FileRepository) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}

// rawManifest is a manifest edited in place and written back byte for byte.
type rawManifest interface {
	Bytes() []byte
}

func (r *FileRepository) write(path string, v any) error {
	var (
		data []byte
		err  error
	)

	if raw, ok := v.(rawManifest); ok {
		data = raw.Bytes()
	} else if data, err = Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err = os.WriteFile(path, data, DefaultFileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
