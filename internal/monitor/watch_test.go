package monitor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/arbor/internal/bt"
)

func TestWatchModel(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	root.Tick(0)
	frames := make(chan Frame, 1)
	frames <- NewFrame("sample", root, bt.TickEvent{Seq: 1, Status: bt.Running})

	var m tea.Model = NewWatchModel(frames, RenderOptions{})
	require.Contains(t, m.View(), "waiting for frames")

	msg := m.(WatchModel).Init()()
	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	frame, ok := m.(WatchModel).Frame()
	require.True(t, ok)
	require.Equal(t, uint64(1), frame.Seq)
	require.Contains(t, m.View(), "sample #1")
	require.Contains(t, m.View(), "AlwaysFail [failed]")
	require.NotContains(t, m.View(), root.ID().String())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")})
	require.Contains(t, m.View(), root.ID().String())

	close(frames)
	m, cmd = m.Update(cmd())
	require.Nil(t, cmd)
	require.True(t, m.(WatchModel).Finished())
	require.Contains(t, m.View(), "finished")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
