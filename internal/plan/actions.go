package plan

import (
	"fmt"
	"slices"
	"sync"

	behaviortree "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"
)

// ActionRegistry is a thread-safe set of named actions.
type ActionRegistry struct {
	mu      sync.RWMutex
	actions map[string]pabtpkg.IAction
}

// NewActionRegistry returns an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]pabtpkg.IAction)}
}

// Register adds or replaces the action under name.
func (r *ActionRegistry) Register(name string, action pabtpkg.IAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = action
}

// Get returns the action registered under name, or nil.
func (r *ActionRegistry) Get(name string) pabtpkg.IAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[name]
}

// Names returns the registered names in sorted order.
func (r *ActionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All returns every action, ordered by name so that planning is
// deterministic.
func (r *ActionRegistry) All() []pabtpkg.IAction {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pabtpkg.IAction, 0, len(names))
	for _, name := range names {
		if a, ok := r.actions[name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Action is a named pabtpkg.IAction: preconditions (a disjunction of
// conjunctions), effects, and the go-behaviortree node that performs it.
type Action struct {
	Name       string
	conditions []pabtpkg.IConditions
	effects    pabtpkg.Effects
	node       behaviortree.Node
}

var _ pabtpkg.IAction = (*Action)(nil)

// NewAction returns an action. Panics if node is nil.
func NewAction(name string, conditions []pabtpkg.IConditions, effects pabtpkg.Effects, node behaviortree.Node) *Action {
	if node == nil {
		panic(fmt.Sprintf("plan.NewAction: node cannot be nil (action=%s)", name))
	}
	return &Action{
		Name:       name,
		conditions: conditions,
		effects:    effects,
		node:       node,
	}
}

func (a *Action) Conditions() []pabtpkg.IConditions { return a.conditions }

func (a *Action) Effects() pabtpkg.Effects { return a.effects }

func (a *Action) Node() behaviortree.Node { return a.node }
