package monitor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// frameMsg carries a frame into the watch program.
type frameMsg struct {
	frame Frame
	ok    bool
}

// WatchModel is a bubbletea model displaying the most recent [Frame] read
// from a channel. The program quits when the channel is closed and the
// user presses q, or on ctrl+c.
type WatchModel struct {
	frames  <-chan Frame
	opts    RenderOptions
	current *Frame
	closed  bool
}

// NewWatchModel returns a model reading frames from frames.
func NewWatchModel(frames <-chan Frame, opts RenderOptions) WatchModel {
	return WatchModel{frames: frames, opts: opts}
}

func (m WatchModel) wait() tea.Cmd {
	frames := m.frames
	return func() tea.Msg {
		frame, ok := <-frames
		return frameMsg{frame: frame, ok: ok}
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd { return m.wait() }

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if !msg.ok {
			m.closed = true
			return m, nil
		}
		frame := msg.frame
		m.current = &frame
		return m, m.wait()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "i":
			m.opts.ShowIDs = !m.opts.ShowIDs
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	var b strings.Builder
	switch {
	case m.current == nil:
		b.WriteString("waiting for frames...")
	default:
		out, err := RenderFrame(*m.current, m.opts)
		if err != nil {
			b.WriteString("invalid frame: " + err.Error())
		} else {
			b.WriteString(out)
		}
	}
	b.WriteString("\n\n")
	help := "q: quit • i: toggle ids"
	if m.closed {
		help = "finished • " + help
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

// Frame returns the most recent frame, and false if none has arrived.
func (m WatchModel) Frame() (Frame, bool) {
	if m.current == nil {
		return Frame{}, false
	}
	return *m.current, true
}

// Finished reports whether the frame channel has been closed.
func (m WatchModel) Finished() bool { return m.closed }
