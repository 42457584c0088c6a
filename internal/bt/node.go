package bt

import (
	"github.com/google/uuid"
)

// Leaf is implemented by user-supplied action and condition nodes.
//
// A leaf is ticked by its parent according to the parent's composition rule,
// and must not assume how many times it will be ticked per cycle: Parallel
// ticks every child on every call, and the active composites re-tick from the
// first child on every call. Failures are reported as [Failed].
type Leaf[W any] interface {
	// Tick evaluates the leaf once against the world state.
	Tick(world W) Status
	// Reset returns the leaf to its initial state.
	Reset()
	// TypeName returns a stable label used for diagnostics.
	TypeName() string
}

// behavior is the closed set of node kinds: the composites defined in this
// package, plus leafKind, which adapts any Leaf.
type behavior[W any] interface {
	tick(world W) Status
	reset()
	children() []*Node[W]
	typeName() string
}

// Node is a single element of a behavior tree. It exclusively owns its kind,
// and (for composites) its children.
type Node[W any] struct {
	id     uuid.UUID
	kind   behavior[W]
	status Status
	owned  bool
}

func newNode[W any](kind behavior[W]) *Node[W] {
	return &Node[W]{
		id:   uuid.New(),
		kind: kind,
	}
}

// NewLeaf wraps a leaf as a node. Panics if leaf is nil.
func NewLeaf[W any](leaf Leaf[W]) *Node[W] {
	if leaf == nil {
		panic("bt.NewLeaf: leaf cannot be nil")
	}
	return newNode[W](leafKind[W]{leaf: leaf})
}

// Tick evaluates the node once, recording and returning the result.
func (n *Node[W]) Tick(world W) Status {
	n.status = n.kind.tick(world)
	return n.status
}

// Reset returns the node and its entire subtree to [Initialized].
func (n *Node[W]) Reset() {
	n.kind.reset()
	n.status = Initialized
}

// Status returns the result of the most recent Tick, or [Initialized] if the
// node has not been ticked since construction or the last Reset.
func (n *Node[W]) Status() Status {
	return n.status
}

// ID returns the identifier assigned to the node at construction.
func (n *Node[W]) ID() uuid.UUID {
	return n.id
}

// Children returns the ordered children of the node, empty for leaves.
// The returned slice is a copy.
func (n *Node[W]) Children() []*Node[W] {
	children := n.kind.children()
	if len(children) == 0 {
		return nil
	}
	out := make([]*Node[W], len(children))
	copy(out, children)
	return out
}

// ChildIDs returns the identifiers of the node's children, in order.
func (n *Node[W]) ChildIDs() []uuid.UUID {
	children := n.kind.children()
	if len(children) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(children))
	for i, c := range children {
		ids[i] = c.id
	}
	return ids
}

// TypeName returns the label of the node's kind.
func (n *Node[W]) TypeName() string {
	return n.kind.typeName()
}

// Leaf returns the wrapped leaf, and false if the node is a composite.
func (n *Node[W]) Leaf() (Leaf[W], bool) {
	if l, ok := n.kind.(leafKind[W]); ok {
		return l.leaf, true
	}
	return nil, false
}

// Walk visits root and its descendants in pre-order. If fn returns false, the
// children of that node are skipped.
func Walk[W any](root *Node[W], fn func(n *Node[W], depth int) bool) {
	if root == nil {
		return
	}
	walk(root, 0, fn)
}

func walk[W any](n *Node[W], depth int, fn func(n *Node[W], depth int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.kind.children() {
		walk(c, depth+1, fn)
	}
}

type leafKind[W any] struct {
	leaf Leaf[W]
}

func (l leafKind[W]) tick(world W) Status { return l.leaf.Tick(world) }

func (l leafKind[W]) reset() { l.leaf.Reset() }

func (l leafKind[W]) children() []*Node[W] { return nil }

func (l leafKind[W]) typeName() string { return l.leaf.TypeName() }
