package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/config"
	"github.com/joeycumines/arbor/internal/monitor"
)

func TestDescribeCommand_Tree(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, NewDescribeCommand(nil), quiet...)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout, "pick-and-place #0 initialized"), stdout)
	for _, want := range []string{
		"ActiveSelector [initialized]",
		"BatteryLow [initialized]",
		"Parallel [initialized]",
		"Report [initialized]",
	} {
		require.Contains(t, stdout, want)
	}
}

func TestDescribeCommand_JSON(t *testing.T) {
	t.Parallel()

	args := append([]string{"-format", "json", "-ticks", "2"}, quiet...)
	stdout, _, err := execute(t, NewDescribeCommand(nil), args...)
	require.NoError(t, err)

	frame, err := monitor.Decode([]byte(strings.TrimSpace(stdout)))
	require.NoError(t, err)
	require.Equal(t, "pick-and-place", frame.Tree)
	require.Equal(t, uint64(2), frame.Seq)
	require.Equal(t, bt.Running, frame.Status)
	require.Len(t, frame.Nodes, 12)
	require.Equal(t, "ActiveSelector", frame.Nodes[0].Type)
	require.Equal(t, bt.Running, frame.Nodes[0].Status)
}

func TestDescribeCommand_SectionDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SetCommandOption("describe", "format", "json")
	stdout, _, err := execute(t, NewDescribeCommand(cfg), quiet...)
	require.NoError(t, err)
	frame, err := monitor.Decode([]byte(strings.TrimSpace(stdout)))
	require.NoError(t, err)
	require.Zero(t, frame.Seq)

	cfg = config.NewConfig()
	cfg.SetCommandOption("describe", "ids", "true")
	stdout, _, err = execute(t, NewDescribeCommand(cfg), quiet...)
	require.NoError(t, err)
	require.Regexp(t, `ActiveSelector \[initialized\] [0-9a-f]{8}-[0-9a-f]{4}-`, stdout)
}

func TestDescribeCommand_InvalidFlags(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, NewDescribeCommand(nil), "-format", "yaml")
	require.ErrorContains(t, err, `invalid -format "yaml"`)

	_, _, err = execute(t, NewDescribeCommand(nil), "-ticks", "-1")
	require.ErrorContains(t, err, "must not be negative")

	_, _, err = execute(t, NewDescribeCommand(nil), "extra")
	require.Error(t, err)
}
