package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the project layout and publishing identity of the released tool.
type Config struct {
	// Root is the project directory; relative paths below are resolved against it.
	Root string `mapstructure:"root" yaml:"root"`
	// BinaryName is the executable name without platform suffix.
	BinaryName string `mapstructure:"binary_name" yaml:"binary_name"`
	// EntryPoint is the Go source entry point handed to the toolchain.
	EntryPoint string `mapstructure:"entry_point" yaml:"entry_point"`
	// Scope is the package name prefix; platform packages are "{scope}-{os}-{cpu}".
	Scope string `mapstructure:"scope" yaml:"scope"`
	// RepositoryURL is written into every generated platform manifest.
	RepositoryURL string `mapstructure:"repository_url" yaml:"repository_url"`
	// License is the SPDX identifier written into every generated platform manifest.
	License string `mapstructure:"license" yaml:"license"`
	// PrimaryManifest is the path of the primary package manifest.
	PrimaryManifest string `mapstructure:"primary_manifest" yaml:"primary_manifest"`
	// BinDir receives one subdirectory of build output per platform.
	BinDir string `mapstructure:"bin_dir" yaml:"bin_dir"`
	// PackagesDir receives one platform package directory per platform.
	PackagesDir string `mapstructure:"packages_dir" yaml:"packages_dir"`
	// Toolchain is the compiler command.
	Toolchain string `mapstructure:"toolchain" yaml:"toolchain"`
	// Registry is the package manager command used to publish.
	Registry string `mapstructure:"registry" yaml:"registry"`
	// BuildFlags are extra arguments passed to "build" before "-o".
	BuildFlags []string `mapstructure:"build_flags" yaml:"build_flags,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for release settings.
	DefaultConfigFilename = "binrelease.yaml"

	// EnvPrefix prefixes environment overrides, e.g. BINRELEASE_SCOPE.
	EnvPrefix = "BINRELEASE"

	// DefaultFilePermissions is the file mode used for the settings file.
	DefaultFilePermissions = 0o644

	primaryManifestFilename = "package.json"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns the settings of the go-deploy project layout.
func Default() *Config {
	return &Config{
		Root:            ".",
		BinaryName:      "go-deploy",
		EntryPoint:      "main.go",
		Scope:           "@winner-fed/go-deploy",
		RepositoryURL:   "git+https://github.com/cklwblove/go-deploy.git",
		License:         "MIT",
		PrimaryManifest: "package.json",
		BinDir:          "bin",
		PackagesDir:     "packages",
		Toolchain:       "go",
		Registry:        "npm",
	}
}

// Load reads settings from path (a missing file is fine), applies
// BINRELEASE_* environment overrides and validates the result.
// A relative Root is resolved against the directory of path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	v := viper.New()
	v.SetConfigFile(filepath.Clean(path))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if !filepath.IsAbs(cfg.Root) {
		base, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}

		cfg.Root = filepath.Join(base, cfg.Root)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and that output directories stay inside Root.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	required := []struct {
		key, value string
	}{
		{"root", cfg.Root},
		{"binary_name", cfg.BinaryName},
		{"entry_point", cfg.EntryPoint},
		{"scope", cfg.Scope},
		{"primary_manifest", cfg.PrimaryManifest},
		{"bin_dir", cfg.BinDir},
		{"packages_dir", cfg.PackagesDir},
		{"toolchain", cfg.Toolchain},
		{"registry", cfg.Registry},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s must be provided", ErrInvalid, field.key)
		}
	}

	if strings.ContainsAny(cfg.BinaryName, `/\`) {
		return fmt.Errorf("%w: binary_name %q must not contain path separators", ErrInvalid, cfg.BinaryName)
	}

	// The registry CLI publishes the directory holding package.json.
	if filepath.Base(cfg.PrimaryManifest) != primaryManifestFilename {
		return fmt.Errorf("%w: primary_manifest %q must point to a %s file",
			ErrInvalid, cfg.PrimaryManifest, primaryManifestFilename)
	}

	for key, dir := range map[string]string{"bin_dir": cfg.BinDir, "packages_dir": cfg.PackagesDir} {
		if !filepath.IsLocal(dir) {
			return fmt.Errorf("%w: %s %q must be a relative path inside root", ErrInvalid, key, dir)
		}
	}

	if filepath.Clean(cfg.BinDir) == filepath.Clean(cfg.PackagesDir) {
		return fmt.Errorf("%w: bin_dir and packages_dir must differ", ErrInvalid)
	}

	return nil
}

// Path resolves a project-relative path against Root.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(c.Root, rel)
}

// BinPath is the absolute build output directory.
func (c *Config) BinPath() string {
	return c.Path(c.BinDir)
}

// PackagesPath is the absolute platform packages directory.
func (c *Config) PackagesPath() string {
	return c.Path(c.PackagesDir)
}

// PrimaryManifestPath is the absolute path of the primary manifest.
func (c *Config) PrimaryManifestPath() string {
	return c.Path(c.PrimaryManifest)
}

// setDefaults registers every key so AutomaticEnv overrides reach Unmarshal.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("root", def.Root)
	v.SetDefault("binary_name", def.BinaryName)
	v.SetDefault("entry_point", def.EntryPoint)
	v.SetDefault("scope", def.Scope)
	v.SetDefault("repository_url", def.RepositoryURL)
	v.SetDefault("license", def.License)
	v.SetDefault("primary_manifest", def.PrimaryManifest)
	v.SetDefault("bin_dir", def.BinDir)
	v.SetDefault("packages_dir", def.PackagesDir)
	v.SetDefault("toolchain", def.Toolchain)
	v.SetDefault("registry", def.Registry)
	v.SetDefault("build_flags", def.BuildFlags)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}
