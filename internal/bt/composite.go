package bt

import "fmt"

// childList is the ordered, exclusively owned child collection shared by all
// composite kinds.
type childList[W any] struct {
	nodes []*Node[W]
}

// adopt validates and takes ownership of children. On error, no child is
// marked as owned.
func adopt[W any](kind string, children []*Node[W]) (childList[W], error) {
	seen := make(map[*Node[W]]struct{}, len(children))
	for i, c := range children {
		if c == nil {
			return childList[W]{}, fmt.Errorf("%s: child %d: %w", kind, i, ErrNilChild)
		}
		if _, dup := seen[c]; dup || c.owned {
			return childList[W]{}, fmt.Errorf("%s: child %d (%s %s): %w", kind, i, c.TypeName(), c.id, ErrChildOwned)
		}
		seen[c] = struct{}{}
	}
	nodes := make([]*Node[W], len(children))
	copy(nodes, children)
	for _, c := range nodes {
		c.owned = true
	}
	return childList[W]{nodes: nodes}, nil
}

func (l childList[W]) children() []*Node[W] { return l.nodes }

func (l childList[W]) resetAll() {
	for _, c := range l.nodes {
		c.Reset()
	}
}

// resetFrom resets every child at index i or later that is not already
// Initialized.
func (l childList[W]) resetFrom(i int) {
	for ; i < len(l.nodes); i++ {
		if c := l.nodes[i]; c.status != Initialized {
			c.Reset()
		}
	}
}

// Must returns n, panicking if err is non-nil. It is intended for assembling
// trees from literals, e.g. bt.Must(bt.NewSequence(a, b)).
func Must[W any](n *Node[W], err error) *Node[W] {
	if err != nil {
		panic(err)
	}
	return n
}
