//go:build !windows

package process

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExecRunner_CapturesAndStreams runs a shell command and checks capture plus live streaming.
func TestExecRunner_CapturesAndStreams(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	r := &ExecRunner{Stdout: &out, Stderr: &errOut}

	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `echo "out:$BINRELEASE_TEST"; echo err >&2`},
		Env:  []string{"BINRELEASE_TEST=42"},
	})
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Equal(t, "out:42\n", res.Stdout)
	require.Equal(t, "err\n", res.Stderr)
	require.Equal(t, "out:42\n", out.String())
	require.Equal(t, "err\n", errOut.String())
}

// TestExecRunner_NonZeroExit reports the exit code without an error.
func TestExecRunner_NonZeroExit(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)}

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.NoError(t, err)
	require.False(t, res.Success())
	require.Equal(t, 3, res.ExitCode)
}

// TestExecRunner_SpawnError wraps ErrSpawn when the executable does not exist.
func TestExecRunner_SpawnError(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)}

	res, err := r.Run(context.Background(), Command{Name: "binrelease-no-such-command"})
	require.ErrorIs(t, err, ErrSpawn)
	require.Nil(t, res)
}

// TestCommand_String renders the command line.
func TestCommand_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "npm publish --dry-run", Command{Name: "npm", Args: []string{"publish", "--dry-run"}}.String())
	require.Equal(t, "npm", Command{Name: "npm"}.String())
}
