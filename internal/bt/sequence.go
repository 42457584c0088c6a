package bt

// sequence ticks its children in order, resuming from the child that was
// running on the previous tick. Once finished, it keeps reporting the same
// result until reset.
type sequence[W any] struct {
	childList[W]
	cursor int
	result Status
}

// NewSequence creates a node that ticks its children in order for as long as
// they succeed ("and" semantics).
//
// Children that have succeeded are not revisited until the node is reset: a
// child returning Running is resumed on the next tick, and children to the
// right of it are not ticked. The node succeeds once every child has
// succeeded, and fails as soon as any child fails. With no children it
// succeeds.
func NewSequence[W any](children ...*Node[W]) (*Node[W], error) {
	list, err := adopt("Sequence", children)
	if err != nil {
		return nil, err
	}
	return newNode[W](&sequence[W]{childList: list}), nil
}

func (s *sequence[W]) tick(world W) Status {
	if s.result.IsDone() {
		return s.result
	}
	for s.cursor < len(s.nodes) {
		status := s.nodes[s.cursor].Tick(world)
		if status != Succeeded {
			if status == Failed {
				s.result = Failed
			}
			return status
		}
		s.cursor++
	}
	s.result = Succeeded
	return Succeeded
}

func (s *sequence[W]) reset() {
	s.resetAll()
	s.cursor = 0
	s.result = Initialized
}

func (s *sequence[W]) typeName() string { return "Sequence" }

// activeSequence re-evaluates every child from the first on each tick.
type activeSequence[W any] struct {
	childList[W]
}

// NewActiveSequence creates a node that, on every tick, ticks its children
// from the first for as long as they succeed.
//
// Unlike [NewSequence], previously succeeded children are ticked again (and
// may now fail). The first child that does not succeed determines the result,
// and every child after it that was left in a non-initial state by an
// earlier tick is reset. With no children it succeeds.
func NewActiveSequence[W any](children ...*Node[W]) (*Node[W], error) {
	list, err := adopt("ActiveSequence", children)
	if err != nil {
		return nil, err
	}
	return newNode[W](&activeSequence[W]{childList: list}), nil
}

func (s *activeSequence[W]) tick(world W) Status {
	for i, c := range s.nodes {
		if status := c.Tick(world); status != Succeeded {
			s.resetFrom(i + 1)
			return status
		}
	}
	return Succeeded
}

func (s *activeSequence[W]) reset() { s.resetAll() }

func (s *activeSequence[W]) typeName() string { return "ActiveSequence" }
