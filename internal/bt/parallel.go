package bt

import "fmt"

type parallel[W any] struct {
	childList[W]
	required int
}

// NewParallel creates a node that ticks every child exactly once per tick,
// in order, without short-circuiting.
//
// The node succeeds when at least requiredSuccesses children succeeded on
// that tick, fails when so many failed that the threshold can no longer be
// reached (failures > len(children)-requiredSuccesses), and is otherwise
// Running. Children are ticked even if they already finished on an earlier
// tick; leaves placed under a Parallel must tolerate that.
//
// Returns [ErrInvalidThreshold] if requiredSuccesses is negative or greater
// than the number of children.
func NewParallel[W any](requiredSuccesses int, children ...*Node[W]) (*Node[W], error) {
	if requiredSuccesses < 0 || requiredSuccesses > len(children) {
		return nil, fmt.Errorf("Parallel: required successes %d with %d children: %w",
			requiredSuccesses, len(children), ErrInvalidThreshold)
	}
	list, err := adopt("Parallel", children)
	if err != nil {
		return nil, err
	}
	return newNode[W](&parallel[W]{childList: list, required: requiredSuccesses}), nil
}

func (p *parallel[W]) tick(world W) Status {
	var successes, failures int
	for _, c := range p.nodes {
		switch c.Tick(world) {
		case Succeeded:
			successes++
		case Failed:
			failures++
		}
	}
	switch {
	case successes >= p.required:
		return Succeeded
	case failures > len(p.nodes)-p.required:
		return Failed
	default:
		return Running
	}
}

func (p *parallel[W]) reset() { p.resetAll() }

func (p *parallel[W]) typeName() string { return "Parallel" }
