//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"os"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

var errTestList = errors.New("test list error")

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

// TestOtherInstances filters out the current process and foreign executables.
func TestOtherInstances(t *testing.T) {
	t.Parallel()

	self := executableName()

	list := func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: os.Getpid(), name: self},
			fakeProcess{pid: 424242, name: self},
			fakeProcess{pid: 434343, name: "npm"},
		}, nil
	}

	pids, err := OtherInstances(list)
	require.NoError(t, err)
	require.Equal(t, []int{424242}, pids)

	_, err = OtherInstances(func() ([]ps.Process, error) { return nil, errTestList })
	require.ErrorIs(t, err, errTestList)
}

// TestOtherInstances_RealProcessTable runs against the live process table.
func TestOtherInstances_RealProcessTable(t *testing.T) {
	t.Parallel()

	_, err := OtherInstances(nil)
	require.NoError(t, err)
}
