// Package extension holds the named commands a player can run through
// Player.Execute.
package extension

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-cave/internal/storage"
)

// Env is what a command gets to work with. Commands act on storage directly;
// the caller refreshes any cached state afterwards.
type Env struct {
	PlayerID string
	Storage  storage.CaveStorage
}

// Command is a pluggable player command.
type Command interface {
	Execute(ctx context.Context, env Env, params ...string) ([]string, error)
}

// CommandFunc adapts a function to Command.
type CommandFunc func(ctx context.Context, env Env, params ...string) ([]string, error)

func (f CommandFunc) Execute(ctx context.Context, env Env, params ...string) ([]string, error) {
	return f(ctx, env, params...)
}

// Registry resolves command names, ignoring case.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]registered
}

type registered struct {
	name string
	cmd  Command
}

func NewRegistry() *Registry {
	return &Registry{commands: map[string]registered{}}
}

// NewDefaultRegistry returns a registry with the built-in commands.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-in names are distinct, so these cannot fail.
	_ = r.Register("HomeCommand", HomeCommand{})
	_ = r.Register("JumpCommand", JumpCommand{})
	return r
}

// Register adds cmd under name.
func (r *Registry) Register(name string, cmd Command) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if cmd == nil {
		return fmt.Errorf("command %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := r.commands[key]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	r.commands[key] = registered{name: name, cmd: cmd}
	return nil
}

// Names lists the registered commands in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for _, c := range r.commands {
		names = append(names, c.name)
	}
	slices.Sort(names)
	return names
}

// Run executes the command called name. Unknown commands and UserErrors
// produce a single line of output and no error.
func (r *Registry) Run(ctx context.Context, env Env, name string, params ...string) ([]string, error) {
	r.mu.RLock()
	c, ok := r.commands[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return []string{fmt.Sprintf("Unknown command: %s", name)}, nil
	}

	out, err := c.cmd.Execute(ctx, env, params...)
	var userErr *UserError
	if errors.As(err, &userErr) {
		return []string{userErr.Message}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", c.name, err)
	}
	return out, nil
}
