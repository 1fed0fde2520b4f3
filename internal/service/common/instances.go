//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/binrelease/internal/logger"
)

// ProcessLister returns the running processes; it is ps.Processes outside tests.
type ProcessLister func() ([]ps.Process, error)

// OtherInstances returns the PIDs of processes running the same executable
// as the current one, excluding the current process.
func OtherInstances(list ProcessLister) ([]int, error) {
	if list == nil {
		list = ps.Processes
	}

	processes, err := list()
	if err != nil {
		return nil, err
	}

	self := os.Getpid()
	name := executableName()

	var pids []int

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if !strings.EqualFold(process.Executable(), name) {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}

// WarnConcurrentRuns logs a warning when another binrelease process is running.
// The pipeline does not lock its directories; this is only a hint to the operator.
func WarnConcurrentRuns(ctx context.Context) {
	pids, err := OtherInstances(nil)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "Another binrelease process is running; bin and packages directories may be modified concurrently",
			"pids", pids)
	}
}

func executableName() string {
	path, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}

	return filepath.Base(path)
}
