// Package plan provides leaves that pursue goals with PA-BT (Planning and
// Acting using Behavior Trees), via github.com/joeycumines/go-pabt. The
// planner reads world state from a blackboard, and expands the plan at run
// time with registered actions whose effects satisfy failed conditions.
//
// Usage:
//
//	state := plan.NewState(bb)
//	state.RegisterAction("pick", plan.NewAction("pick",
//	    []pabtpkg.IConditions{{plan.NewExprCondition("atCube", "value == true")}},
//	    pabtpkg.Effects{plan.NewEffect("holding", true)},
//	    pickNode,
//	))
//	planned, _ := pabtpkg.INew(state, []pabtpkg.IConditions{{plan.Equals("holding", true)}})
//	status, err := planned.Node().Tick()
package plan

import (
	"fmt"
	"log/slog"
	"sync"

	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/arbor/internal/blackboard"
)

var _ pabtpkg.IState = (*State)(nil)

// ActionGeneratorFunc produces candidate actions for a failed condition,
// for domains where actions depend on the current state (for example, one
// move action per reachable location).
type ActionGeneratorFunc func(failed pabtpkg.Condition) ([]pabtpkg.IAction, error)

// State implements pabtpkg.IState over a blackboard.
type State struct {
	*blackboard.Blackboard

	actions *ActionRegistry
	logger  *slog.Logger

	mu        sync.RWMutex
	generator ActionGeneratorFunc
}

// NewState returns a state backed by bb, with an empty action registry.
func NewState(bb *blackboard.Blackboard) *State {
	return &State{
		Blackboard: bb,
		actions:    NewActionRegistry(),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger used for planner diagnostics.
func (s *State) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetActionGenerator sets a generator consulted before the registry. When
// it returns at least one action, the registry is not consulted.
func (s *State) SetActionGenerator(gen ActionGeneratorFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generator = gen
}

// RegisterAction adds or replaces a named action.
func (s *State) RegisterAction(name string, action pabtpkg.IAction) {
	s.actions.Register(name, action)
}

// Registry returns the action registry.
func (s *State) Registry() *ActionRegistry { return s.actions }

// Variable implements pabtpkg.IState. Keys are normalized to blackboard
// keys: strings as-is, integers in decimal, and fmt.Stringer values via
// String. Missing keys yield (nil, nil).
func (s *State) Variable(key any) (any, error) {
	name, err := keyString(key)
	if err != nil {
		return nil, err
	}
	return s.Get(name), nil
}

func keyString(key any) (string, error) {
	switch k := key.(type) {
	case nil:
		return "", ErrNilKey
	case string:
		return k, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", k), nil
	case fmt.Stringer:
		return k.String(), nil
	default:
		return "", fmt.Errorf("%T: %w", key, ErrUnsupportedKey)
	}
}

// Actions implements pabtpkg.IState, returning the actions with an effect
// on the failed condition's key whose value satisfies it. With a nil
// condition, every registered action is returned.
func (s *State) Actions(failed pabtpkg.Condition) ([]pabtpkg.IAction, error) {
	if failed == nil {
		return s.actions.All(), nil
	}

	s.mu.RLock()
	generator := s.generator
	s.mu.RUnlock()

	if generator != nil {
		generated, err := generator(failed)
		if err != nil {
			s.logger.Warn("[PA-BT] action generator error", "key", failed.Key(), "error", err)
		} else if len(generated) > 0 {
			return relevant(generated, failed), nil
		}
	}

	actions := relevant(s.actions.All(), failed)
	s.logger.Debug("[PA-BT] actions", "key", failed.Key(), "count", len(actions))
	return actions, nil
}

func relevant(actions []pabtpkg.IAction, failed pabtpkg.Condition) []pabtpkg.IAction {
	var out []pabtpkg.IAction
	for _, action := range actions {
		for _, effect := range action.Effects() {
			if effect != nil && effect.Key() == failed.Key() && failed.Match(effect.Value()) {
				out = append(out, action)
				break
			}
		}
	}
	return out
}
