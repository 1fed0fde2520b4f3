package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/process"
	"github.com/oshokin/binrelease/internal/process/processtest"
)

var errTestSpawn = errors.New("exec: \"go\": executable file not found in $PATH")

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Root = t.TempDir()

	return cfg
}

// fakeToolchain writes a small binary at the -o path, like a successful go build.
func fakeToolchain(_ context.Context, cmd process.Command) (*process.Result, error) {
	out, ok := processtest.ArgAfter(cmd, "-o")
	if !ok {
		return &process.Result{ExitCode: 2, Stderr: "missing -o"}, nil
	}

	goos, _ := processtest.Env(cmd, "GOOS")
	if err := os.WriteFile(out, []byte("binary for "+goos), 0o644); err != nil {
		return nil, err
	}

	return &process.Result{}, nil
}

// TestBuildAll_BuildsEveryTarget checks command construction, output layout and preserved files.
func TestBuildAll_BuildsEveryTarget(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.BuildFlags = []string{"-trimpath"}

	// A checked-in wrapper script next to the platform directories must survive.
	require.NoError(t, os.MkdirAll(cfg.BinPath(), 0o755))
	wrapper := filepath.Join(cfg.BinPath(), "go-deploy.js")
	require.NoError(t, os.WriteFile(wrapper, []byte("#!/usr/bin/env node\n"), 0o644))

	runner := &processtest.Runner{Handler: fakeToolchain}

	artifacts, err := NewOrchestrator(cfg, runner).BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, 5)

	wantPaths := []string{
		filepath.Join(cfg.BinPath(), "darwin-x64", "go-deploy"),
		filepath.Join(cfg.BinPath(), "darwin-arm64", "go-deploy"),
		filepath.Join(cfg.BinPath(), "linux-x64", "go-deploy"),
		filepath.Join(cfg.BinPath(), "linux-arm64", "go-deploy"),
		filepath.Join(cfg.BinPath(), "win32-x64", "go-deploy.exe"),
	}
	for i, artifact := range artifacts {
		require.Equal(t, wantPaths[i], artifact.Path)
		require.Equal(t, release.BuildStatusSucceeded, artifact.Status)
		require.Positive(t, artifact.Size)
		require.True(t, filepath.IsAbs(artifact.Path))
	}

	commands := runner.Commands()
	require.Len(t, commands, 5)

	for _, cmd := range commands {
		require.Equal(t, "go", cmd.Name)
		require.Equal(t, cfg.Root, cmd.Dir)
		require.Equal(t, "build", cmd.Args[0])
		require.Equal(t, "-trimpath", cmd.Args[1])
		require.Equal(t, "main.go", cmd.Args[len(cmd.Args)-1])

		cgo, ok := processtest.Env(cmd, "CGO_ENABLED")
		require.True(t, ok)
		require.Equal(t, "0", cgo)

		_, ok = processtest.Env(cmd, "GOOS")
		require.True(t, ok)

		_, ok = processtest.Env(cmd, "GOARCH")
		require.True(t, ok)
	}

	_, err = os.Stat(wrapper)
	require.NoError(t, err)
}

// TestBuildAll_CleanRoomAfterCatalogShrinks simulates dropping a target between two runs.
func TestBuildAll_CleanRoomAfterCatalogShrinks(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	runner := &processtest.Runner{Handler: fakeToolchain}

	_, err := NewOrchestrator(cfg, runner).BuildAll(context.Background())
	require.NoError(t, err)

	windowsDir := filepath.Join(cfg.BinPath(), "win32-x64")
	_, err = os.Stat(windowsDir)
	require.NoError(t, err)

	shrunk := release.Targets()[:4]

	artifacts, err := NewOrchestrator(cfg, runner, WithTargets(shrunk)).BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, 4)

	_, err = os.Stat(windowsDir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestBuildAll_FailureIsAllOrNothing makes one target fail and checks every build still ran.
func TestBuildAll_FailureIsAllOrNothing(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	runner := &processtest.Runner{
		Handler: func(ctx context.Context, cmd process.Command) (*process.Result, error) {
			if goarch, _ := processtest.Env(cmd, "GOARCH"); goarch == "arm64" {
				if goos, _ := processtest.Env(cmd, "GOOS"); goos == "linux" {
					return &process.Result{ExitCode: 1, Stderr: "# example\nmain.go:3:1: syntax error"}, nil
				}
			}

			return fakeToolchain(ctx, cmd)
		},
	}

	artifacts, err := NewOrchestrator(cfg, runner).BuildAll(context.Background())
	require.ErrorIs(t, err, ErrBuildFailed)
	require.Nil(t, artifacts)
	require.Len(t, runner.Commands(), 5)

	var targetErr *TargetError
	require.ErrorAs(t, err, &targetErr)
	require.Equal(t, release.Target{OS: "linux", Arch: "arm64"}, targetErr.Target)
	require.Equal(t, 1, targetErr.ExitCode)
	require.Contains(t, err.Error(), "linux/arm64")
	require.Contains(t, err.Error(), "syntax error")
}

// TestBuildAll_SpawnError propagates a toolchain that cannot be started.
func TestBuildAll_SpawnError(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	runner := &processtest.Runner{
		Handler: func(context.Context, process.Command) (*process.Result, error) {
			return nil, errTestSpawn
		},
	}

	_, err := NewOrchestrator(cfg, runner).BuildAll(context.Background())
	require.ErrorIs(t, err, ErrBuildFailed)
	require.ErrorIs(t, err, errTestSpawn)
}

// TestBuildAll_MissingArtifact treats a silent toolchain as a failure.
func TestBuildAll_MissingArtifact(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	runner := new(processtest.Runner)

	_, err := NewOrchestrator(cfg, runner).BuildAll(context.Background())
	require.ErrorIs(t, err, ErrArtifactMissing)
}

// TestBuildAll_UnknownTargetTouchesNothing rejects unmapped targets before cleaning.
func TestBuildAll_UnknownTargetTouchesNothing(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	stale := filepath.Join(cfg.BinPath(), "linux-x64")
	require.NoError(t, os.MkdirAll(stale, 0o755))

	runner := &processtest.Runner{Handler: fakeToolchain}
	targets := []release.Target{{OS: "linux", Arch: "amd64"}, {OS: "plan9", Arch: "amd64"}}

	_, err := NewOrchestrator(cfg, runner, WithTargets(targets)).BuildAll(context.Background())
	require.ErrorIs(t, err, release.ErrUnknownOS)
	require.Empty(t, runner.Commands())

	_, err = os.Stat(stale)
	require.NoError(t, err)
}

// TestClean_MissingBinDir is a no-op.
func TestClean_MissingBinDir(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, NewOrchestrator(cfg, new(processtest.Runner)).Clean(context.Background()))
}

// TestClean_KeepsNonPlatformDirectories removes only "{os}-{cpu}" output directories.
func TestClean_KeepsNonPlatformDirectories(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	helper := filepath.Join(cfg.BinPath(), "helpers", "wrapper.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(helper), 0o755))
	require.NoError(t, os.WriteFile(helper, []byte("module.exports = {};"), 0o644))

	// A platform the catalog no longer builds is still output and goes away.
	dropped := filepath.Join(cfg.BinPath(), "win32-arm64")
	require.NoError(t, os.MkdirAll(dropped, 0o755))

	_, err := NewOrchestrator(cfg, &processtest.Runner{Handler: fakeToolchain}).BuildAll(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(helper)
	require.NoError(t, err)

	_, err = os.Stat(dropped)
	require.ErrorIs(t, err, os.ErrNotExist)
}
