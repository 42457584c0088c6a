package bt

// selector ticks its children in order until one does not fail, resuming
// from the running child on the next tick.
type selector[W any] struct {
	childList[W]
	cursor int
	result Status
}

// NewSelector creates a node that ticks its children in order for as long as
// they fail ("or" semantics).
//
// Children that have failed are not revisited until the node is reset. The
// node succeeds as soon as a child succeeds, reports Running while a child is
// running, and fails only once every child has failed. With no children it
// fails.
func NewSelector[W any](children ...*Node[W]) (*Node[W], error) {
	list, err := adopt("Selector", children)
	if err != nil {
		return nil, err
	}
	return newNode[W](&selector[W]{childList: list}), nil
}

func (s *selector[W]) tick(world W) Status {
	if s.result.IsDone() {
		return s.result
	}
	for s.cursor < len(s.nodes) {
		status := s.nodes[s.cursor].Tick(world)
		if status != Failed {
			if status == Succeeded {
				s.result = Succeeded
			}
			return status
		}
		s.cursor++
	}
	s.result = Failed
	return Failed
}

func (s *selector[W]) reset() {
	s.resetAll()
	s.cursor = 0
	s.result = Initialized
}

func (s *selector[W]) typeName() string { return "Selector" }

// activeSelector re-evaluates every child from the first on each tick.
type activeSelector[W any] struct {
	childList[W]
}

// NewActiveSelector creates a node that, on every tick, ticks its children
// from the first for as long as they fail.
//
// This suits checks that must be re-validated every cycle (e.g. a motor
// temperature guard ahead of normal operation). The first child that does not
// fail determines the result, and later siblings left running by an earlier
// tick are reset. With no children it fails.
func NewActiveSelector[W any](children ...*Node[W]) (*Node[W], error) {
	list, err := adopt("ActiveSelector", children)
	if err != nil {
		return nil, err
	}
	return newNode[W](&activeSelector[W]{childList: list}), nil
}

func (s *activeSelector[W]) tick(world W) Status {
	for i, c := range s.nodes {
		if status := c.Tick(world); status != Failed {
			s.resetFrom(i + 1)
			return status
		}
	}
	return Failed
}

func (s *activeSelector[W]) reset() { s.resetAll() }

func (s *activeSelector[W]) typeName() string { return "ActiveSelector" }
