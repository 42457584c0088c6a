package plan

import (
	"log/slog"

	behaviortree "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/arbor/internal/blackboard"
	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/gobt"
)

// Leaf pursues a goal with a PA-BT plan.
//
// The plan is created on the first tick, from the state returned by
// newState for the world being ticked, and is discarded on Reset. Planning
// and execution errors are logged and reported as [bt.Failed].
type Leaf struct {
	name     string
	newState func(world *blackboard.Blackboard) *State
	goal     []pabtpkg.IConditions
	logger   *slog.Logger

	state *State
	node  behaviortree.Node
}

// NewLeaf returns a planning leaf. The goal is satisfied when any one of its
// conjunctions holds. Panics if newState is nil.
func NewLeaf(name string, newState func(world *blackboard.Blackboard) *State, goal ...pabtpkg.IConditions) *Leaf {
	if newState == nil {
		panic("plan.NewLeaf: newState cannot be nil")
	}
	return &Leaf{
		name:     name,
		newState: newState,
		goal:     goal,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger and returns l.
func (l *Leaf) WithLogger(logger *slog.Logger) *Leaf {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// State returns the state of the current plan, or nil before the first tick.
func (l *Leaf) State() *State { return l.state }

func (l *Leaf) Tick(world *blackboard.Blackboard) bt.Status {
	if l.node == nil {
		state := l.newState(world)
		state.SetLogger(l.logger)
		planned, err := pabtpkg.INew(state, l.goal)
		if err != nil {
			l.logger.Error("[PA-BT] planning failed", "leaf", l.name, "error", err)
			return bt.Failed
		}
		l.state = state
		l.node = planned.Node()
		l.logger.Debug("[PA-BT] plan created", "leaf", l.name, "actions", state.Registry().Names())
	}
	status, err := l.node.Tick()
	if err != nil {
		l.logger.Warn("[PA-BT] plan error", "leaf", l.name, "error", err)
		return bt.Failed
	}
	return gobt.ToStatus(status)
}

func (l *Leaf) Reset() {
	l.state = nil
	l.node = nil
}

func (l *Leaf) TypeName() string { return l.name }
