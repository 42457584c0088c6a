package bt

import (
	"testing"
)

// world is the state type used by the tests in this package. Nodes never
// read it; it exists so that the world handle can be asserted on.
type world struct {
	ticks int
}

// scripted is a test leaf that returns statuses from a script, one per tick,
// repeating the last entry once the script is exhausted.
type scripted struct {
	name   string
	script []Status
	pos    int
	ticks  int
	resets int
	seen   []*world
}

func newScripted(script ...Status) *scripted {
	return &scripted{name: "Scripted", script: script}
}

func (s *scripted) Tick(w *world) Status {
	if w != nil {
		w.ticks++
	}
	s.seen = append(s.seen, w)
	s.ticks++
	i := s.pos
	s.pos++
	if len(s.script) == 0 {
		return Succeeded
	}
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	return s.script[i]
}

// Reset rewinds the script, mirroring a leaf that restarts its work.
func (s *scripted) Reset() {
	s.resets++
	s.pos = 0
}

func (s *scripted) TypeName() string { return s.name }

// noTick fails the test if it is ever ticked.
type noTick struct {
	t      *testing.T
	resets int
}

func (n *noTick) Tick(*world) Status {
	n.t.Helper()
	n.t.Error("noTick leaf was ticked")
	return Failed
}

func (n *noTick) Reset() { n.resets++ }

func (n *noTick) TypeName() string { return "NoTick" }

func leafNodes(leaves ...Leaf[*world]) []*Node[*world] {
	nodes := make([]*Node[*world], len(leaves))
	for i, l := range leaves {
		nodes[i] = NewLeaf(l)
	}
	return nodes
}
