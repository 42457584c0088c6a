package command

import (
	"fmt"
	"sort"

	"github.com/joeycumines/arbor/internal/config"
)

// Registry manages the collection of available commands.
type Registry struct {
	commands map[string]Command
	config   *config.Config
}

// NewRegistry creates an empty registry with an empty configuration.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(nil)
}

// NewRegistryWithConfig creates a new command registry with configuration
// support. A nil cfg is replaced with an empty configuration.
func NewRegistryWithConfig(cfg *config.Config) *Registry {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Registry{
		commands: make(map[string]Command),
		config:   cfg,
	}
}

// Config returns the configuration commands are built with.
func (r *Registry) Config() *config.Config { return r.config }

// Register adds a command to the registry, replacing any command with the
// same name.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, error) {
	if cmd, exists := r.commands[name]; exists {
		return cmd, nil
	}
	return nil, fmt.Errorf("command not found: %s", name)
}

// List returns the names of all registered commands, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers every built-in command, returning the help
// command.
func (r *Registry) RegisterBuiltins(version string) *HelpCommand {
	help := NewHelpCommand(r)
	r.Register(help)
	r.Register(NewVersionCommand(version))
	r.Register(NewConfigCommand(r.config))
	r.Register(NewInitCommand())
	r.Register(NewRunCommand(r.config))
	r.Register(NewDescribeCommand(r.config))
	r.Register(NewWatchCommand(r.config))
	return help
}
