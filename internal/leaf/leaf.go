package leaf

import (
	"github.com/joeycumines/arbor/internal/bt"
)

// Constant always returns the same status.
type Constant[W any] struct {
	status bt.Status
}

// NewConstant returns a leaf that always returns status.
func NewConstant[W any](status bt.Status) *Constant[W] {
	return &Constant[W]{status: status}
}

// AlwaysSucceed returns a node that always succeeds.
func AlwaysSucceed[W any]() *bt.Node[W] { return bt.NewLeaf[W](NewConstant[W](bt.Succeeded)) }

// AlwaysFail returns a node that always fails.
func AlwaysFail[W any]() *bt.Node[W] { return bt.NewLeaf[W](NewConstant[W](bt.Failed)) }

// AlwaysRunning returns a node that never finishes.
func AlwaysRunning[W any]() *bt.Node[W] { return bt.NewLeaf[W](NewConstant[W](bt.Running)) }

func (c *Constant[W]) Tick(W) bt.Status { return c.status }

func (c *Constant[W]) Reset() {}

func (c *Constant[W]) TypeName() string {
	switch c.status {
	case bt.Succeeded:
		return "AlwaysSucceed"
	case bt.Failed:
		return "AlwaysFail"
	case bt.Running:
		return "AlwaysRunning"
	default:
		return "Constant"
	}
}

// Func adapts a Go function to a leaf.
type Func[W any] struct {
	name  string
	tick  func(W) bt.Status
	reset func()
}

// NewFunc returns a leaf named name that calls tick on every tick. Panics if
// tick is nil.
func NewFunc[W any](name string, tick func(W) bt.Status) *Func[W] {
	if tick == nil {
		panic("leaf.NewFunc: tick cannot be nil")
	}
	return &Func[W]{name: name, tick: tick}
}

// OnReset sets a function called when the leaf is reset, and returns f.
func (f *Func[W]) OnReset(reset func()) *Func[W] {
	f.reset = reset
	return f
}

func (f *Func[W]) Tick(world W) bt.Status { return f.tick(world) }

func (f *Func[W]) Reset() {
	if f.reset != nil {
		f.reset()
	}
}

func (f *Func[W]) TypeName() string { return f.name }

// Condition maps a predicate to [bt.Succeeded] or [bt.Failed]. It never
// returns [bt.Running].
type Condition[W any] struct {
	name string
	pred func(W) bool
}

// NewCondition returns a condition leaf. Panics if pred is nil.
func NewCondition[W any](name string, pred func(W) bool) *Condition[W] {
	if pred == nil {
		panic("leaf.NewCondition: predicate cannot be nil")
	}
	return &Condition[W]{name: name, pred: pred}
}

func (c *Condition[W]) Tick(world W) bt.Status {
	if c.pred(world) {
		return bt.Succeeded
	}
	return bt.Failed
}

func (c *Condition[W]) Reset() {}

func (c *Condition[W]) TypeName() string { return c.name }
