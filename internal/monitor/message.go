// Package monitor exports the state of running trees: flat snapshots that
// can be serialized, rendered as a terminal tree, broadcast over NATS,
// traced with OpenTelemetry, and watched live.
package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joeycumines/arbor/internal/bt"
)

var (
	// ErrEmptyTopology is returned by Topology for an empty node list.
	ErrEmptyTopology = errors.New("no nodes")
	// ErrDuplicateNode is returned by Topology when an id appears twice.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrUnknownChild is returned by Topology when a child id has no node.
	ErrUnknownChild = errors.New("unknown child id")
	// ErrMultipleParents is returned by Topology when a node is listed as a
	// child more than once.
	ErrMultipleParents = errors.New("node has multiple parents")
	// ErrNoRoot is returned by Topology when no node, or more than one node,
	// is unreferenced.
	ErrNoRoot = errors.New("topology must have exactly one root")
)

// NodeMsg describes one node of a tree. Children are referenced by id, so
// that a tree is represented as a flat list.
type NodeMsg struct {
	ID       uuid.UUID   `json:"id"`
	Type     string      `json:"type"`
	Status   bt.Status   `json:"status"`
	Children []uuid.UUID `json:"children,omitempty"`
}

// Frame is a snapshot of a tree taken after a tick.
type Frame struct {
	Tree    string        `json:"tree,omitempty"`
	Seq     uint64        `json:"seq"`
	Status  bt.Status     `json:"status"`
	Time    time.Time     `json:"time"`
	Elapsed time.Duration `json:"elapsed"`
	Nodes   []NodeMsg     `json:"nodes"`
}

// Snapshot returns a message per node of the tree rooted at root, in
// pre-order; the root is first.
func Snapshot[W any](root *bt.Node[W]) []NodeMsg {
	var msgs []NodeMsg
	bt.Walk(root, func(n *bt.Node[W], _ int) bool {
		msgs = append(msgs, NodeMsg{
			ID:       n.ID(),
			Type:     n.TypeName(),
			Status:   n.Status(),
			Children: n.ChildIDs(),
		})
		return true
	})
	return msgs
}

// NewFrame snapshots root after the tick described by event.
func NewFrame[W any](name string, root *bt.Node[W], event bt.TickEvent) Frame {
	return Frame{
		Tree:    name,
		Seq:     event.Seq,
		Status:  event.Status,
		Time:    event.Started,
		Elapsed: event.Elapsed,
		Nodes:   Snapshot(root),
	}
}

// Encode serializes a frame as JSON.
func Encode(frame Frame) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("monitor: encode frame: %w", err)
	}
	return data, nil
}

// Decode parses a frame produced by Encode, and validates its topology.
func Decode(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("monitor: decode frame: %w", err)
	}
	if _, err := Topology(frame.Nodes); err != nil {
		return Frame{}, fmt.Errorf("monitor: decode frame: %w", err)
	}
	return frame, nil
}

// Topology checks that nodes describe a single tree: ids are unique, every
// child id refers to a node, every node has at most one parent, and exactly
// one node (the root) has none. It returns the root's index.
func Topology(nodes []NodeMsg) (int, error) {
	if len(nodes) == 0 {
		return -1, ErrEmptyTopology
	}
	index := make(map[uuid.UUID]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID]; dup {
			return -1, fmt.Errorf("%s: %w", n.ID, ErrDuplicateNode)
		}
		index[n.ID] = i
	}
	parented := make([]bool, len(nodes))
	for _, n := range nodes {
		for _, c := range n.Children {
			i, ok := index[c]
			if !ok {
				return -1, fmt.Errorf("%s child %s: %w", n.ID, c, ErrUnknownChild)
			}
			if parented[i] {
				return -1, fmt.Errorf("%s: %w", c, ErrMultipleParents)
			}
			parented[i] = true
		}
	}
	root := -1
	for i, p := range parented {
		if p {
			continue
		}
		if root != -1 {
			return -1, ErrNoRoot
		}
		root = i
	}
	if root == -1 {
		return -1, ErrNoRoot
	}
	// a single unreferenced node plus at most one parent per node leaves
	// cycles only in components unreachable from the root
	if reached := countReachable(nodes, index, root); reached != len(nodes) {
		return -1, fmt.Errorf("%d of %d nodes reachable: %w", reached, len(nodes), ErrNoRoot)
	}
	return root, nil
}

func countReachable(nodes []NodeMsg, index map[uuid.UUID]int, root int) int {
	seen := make([]bool, len(nodes))
	stack := []int{root}
	count := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		count++
		for _, c := range nodes[i].Children {
			stack = append(stack, index[c])
		}
	}
	return count
}
