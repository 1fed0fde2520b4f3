package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/binrelease/internal/config"
)

// TestRun_WarnsAboutConcurrentRuns checks the warning fires before settings are read.
//
//nolint:paralleltest // Replaces the package-level warning hook.
func TestRun_WarnsAboutConcurrentRuns(t *testing.T) {
	var warned bool

	previous := warnConcurrentRuns
	warnConcurrentRuns = func(context.Context) { warned = true }

	t.Cleanup(func() { warnConcurrentRuns = previous })

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("bin_dir: /abs/bin\n"), 0o644))

	err := Run(context.Background(), &Options{ConfigPath: path})
	require.ErrorIs(t, err, config.ErrInvalid)
	require.True(t, warned)
}
