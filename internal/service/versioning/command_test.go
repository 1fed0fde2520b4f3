package versioning

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/binrelease/internal/config"
)

// TestRunBump_WarnsAboutConcurrentRuns checks the warning fires before settings are read.
//
//nolint:paralleltest // Replaces the package-level warning hook.
func TestRunBump_WarnsAboutConcurrentRuns(t *testing.T) {
	var warned bool

	previous := warnConcurrentRuns
	warnConcurrentRuns = func(context.Context) { warned = true }

	t.Cleanup(func() { warnConcurrentRuns = previous })

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("packages_dir: ../outside\n"), 0o644))

	err := RunBump(context.Background(), &BumpOptions{ConfigPath: path, Instruction: "patch"})
	require.ErrorIs(t, err, config.ErrInvalid)
	require.True(t, warned)
}
