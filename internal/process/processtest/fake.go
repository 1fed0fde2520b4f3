// Package processtest provides an in-memory process.Runner for tests.
package processtest

import (
	"context"
	"slices"
	"sync"

	"github.com/oshokin/binrelease/internal/process"
)

// Handler decides the outcome of one command.
type Handler func(ctx context.Context, cmd process.Command) (*process.Result, error)

// Runner records every command and delegates to Handler.
// A nil Handler makes every command succeed.
type Runner struct {
	Handler Handler

	mu       sync.Mutex
	commands []process.Command
}

// Run records cmd and returns the handler's outcome.
func (r *Runner) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, process.Command{
		Name: cmd.Name,
		Args: slices.Clone(cmd.Args),
		Dir:  cmd.Dir,
		Env:  slices.Clone(cmd.Env),
	})
	r.mu.Unlock()

	if r.Handler == nil {
		return &process.Result{}, nil
	}

	return r.Handler(ctx, cmd)
}

// Commands returns a copy of the recorded commands in call order.
func (r *Runner) Commands() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.commands)
}

// Env looks up KEY in a recorded command's environment overrides.
func Env(cmd process.Command, key string) (string, bool) {
	prefix := key + "="

	for _, kv := range cmd.Env {
		if len(kv) >= len(prefix) && kv[:len(prefix)] == prefix {
			return kv[len(prefix):], true
		}
	}

	return "", false
}

// ArgAfter returns the argument following flag, e.g. the path after "-o".
func ArgAfter(cmd process.Command, flag string) (string, bool) {
	i := slices.Index(cmd.Args, flag)
	if i < 0 || i+1 >= len(cmd.Args) {
		return "", false
	}

	return cmd.Args[i+1], true
}
