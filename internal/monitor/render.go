package monitor

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/google/uuid"

	"github.com/joeycumines/arbor/internal/bt"
)

var (
	statusStyles = map[bt.Status]lipgloss.Style{
		bt.Initialized: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		bt.Running:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		bt.Succeeded:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		bt.Failed:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
	typeStyle       = lipgloss.NewStyle().Bold(true)
	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
	headerStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
)

// RenderOptions controls [Render].
type RenderOptions struct {
	// ShowIDs appends each node's id to its label.
	ShowIDs bool
}

// Render draws nodes, as produced by [Snapshot], as a terminal tree with
// each node labelled by type and status.
func Render(nodes []NodeMsg, opts RenderOptions) (string, error) {
	root, err := Topology(nodes)
	if err != nil {
		return "", err
	}
	index := make(map[uuid.UUID]NodeMsg, len(nodes))
	for _, n := range nodes {
		index[n.ID] = n
	}
	return build(index, nodes[root], opts).String(), nil
}

// RenderFrame renders a frame with a one-line header.
func RenderFrame(frame Frame, opts RenderOptions) (string, error) {
	body, err := Render(frame.Nodes, opts)
	if err != nil {
		return "", err
	}
	name := frame.Tree
	if name == "" {
		name = "tree"
	}
	header := headerStyle.Render(fmt.Sprintf("%s #%d", name, frame.Seq)) + " " +
		statusStyle(frame.Status).Render(frame.Status.String()) +
		fmt.Sprintf(" (%s)", frame.Elapsed)
	return header + "\n" + body, nil
}

func build(index map[uuid.UUID]NodeMsg, n NodeMsg, opts RenderOptions) *tree.Tree {
	t := tree.Root(label(n, opts)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumeratorStyle)
	for _, id := range n.Children {
		child := index[id]
		if len(child.Children) == 0 {
			t.Child(label(child, opts))
			continue
		}
		t.Child(build(index, child, opts))
	}
	return t
}

func label(n NodeMsg, opts RenderOptions) string {
	s := typeStyle.Render(n.Type) + " " + statusStyle(n.Status).Render("["+n.Status.String()+"]")
	if opts.ShowIDs {
		s += " " + enumeratorStyle.Render(n.ID.String())
	}
	return s
}

func statusStyle(s bt.Status) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
