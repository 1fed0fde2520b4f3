package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// ErrSpawn is wrapped when a command could not be started at all.
var ErrSpawn = errors.New("spawn command")

// Command is a single child process invocation.
type Command struct {
	// Name is the executable looked up in PATH.
	Name string
	// Args are passed verbatim.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env holds KEY=VALUE overrides appended to the parent environment.
	Env []string
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a command that was started.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports a zero exit status.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Runner executes commands. A non-nil error means the process never ran
// (or its wait failed for a reason other than a nonzero exit); a nonzero
// exit is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec, streaming output live to Stdout and
// Stderr while also capturing it into the Result.
type ExecRunner struct {
	// Stdout receives the child's stdout as it is written (os.Stdout if nil).
	Stdout io.Writer
	// Stderr receives the child's stderr as it is written (os.Stderr if nil).
	Stderr io.Writer

	// mu serialises writes to the shared streams from concurrent children.
	mu sync.Mutex
}

// NewExecRunner returns a runner that inherits the process streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts cmd, waits for it and reports its exit code.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // Commands come from validated settings.
	c.Dir = cmd.Dir
	c.Stdin = os.Stdin
	c.Stdout = io.MultiWriter(&stdout, &lockedWriter{mu: &r.mu, w: orDefault(r.Stdout, os.Stdout)})
	c.Stderr = io.MultiWriter(&stderr, &lockedWriter{mu: &r.mu, w: orDefault(r.Stderr, os.Stderr)})

	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	err := c.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// Killed by a signal; report it as a failure code and surface the context error if any.
			result.ExitCode = 1
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("%s: %w", cmd, ctxErr)
			}
		}

		return result, nil
	default:
		return nil, fmt.Errorf("%w %q: %w", ErrSpawn, cmd.String(), err)
	}
}

// lockedWriter guards a shared writer with a mutex.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}

	return w
}
