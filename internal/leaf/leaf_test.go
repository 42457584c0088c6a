package leaf

import (
	"io"
	"log/slog"
	"testing"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConstant(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		node *bt.Node[int]
		want bt.Status
		name string
	}{
		{AlwaysSucceed[int](), bt.Succeeded, "AlwaysSucceed"},
		{AlwaysFail[int](), bt.Failed, "AlwaysFail"},
		{AlwaysRunning[int](), bt.Running, "AlwaysRunning"},
		{bt.NewLeaf[int](NewConstant[int](bt.Initialized)), bt.Initialized, "Constant"},
	} {
		require.Equal(t, tc.want, tc.node.Tick(0))
		require.Equal(t, tc.want, tc.node.Tick(0))
		require.Equal(t, tc.name, tc.node.TypeName())
	}
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var resets int
	f := NewFunc("Count", func(w *int) bt.Status {
		*w++
		if *w < 2 {
			return bt.Running
		}
		return bt.Succeeded
	}).OnReset(func() { resets++ })

	n := bt.NewLeaf[*int](f)
	w := new(int)
	require.Equal(t, bt.Running, n.Tick(w))
	require.Equal(t, bt.Succeeded, n.Tick(w))
	require.Equal(t, 2, *w)
	require.Equal(t, "Count", n.TypeName())

	n.Reset()
	require.Equal(t, 1, resets)

	require.NotPanics(t, func() { NewFunc("NoReset", func(int) bt.Status { return bt.Failed }).Reset() })
	require.Panics(t, func() { NewFunc[int]("Nil", nil) })
}

func TestCondition(t *testing.T) {
	t.Parallel()

	c := NewCondition("Positive", func(w int) bool { return w > 0 })
	require.Equal(t, bt.Succeeded, c.Tick(1))
	require.Equal(t, bt.Failed, c.Tick(0))
	require.Equal(t, "Positive", c.TypeName())
	require.Panics(t, func() { NewCondition[int]("Nil", nil) })
}

func TestLeaves_ComposeIntoTree(t *testing.T) {
	t.Parallel()

	root := bt.Must(bt.NewSelector(
		bt.NewLeaf[int](NewCondition("Negative", func(w int) bool { return w < 0 })),
		bt.Must(bt.NewSequence(
			bt.NewLeaf[int](NewCondition("Positive", func(w int) bool { return w > 0 })),
			AlwaysSucceed[int](),
		)),
	))
	tree := bt.NewTree(5, root, bt.WithLogger(discardLogger()))
	require.Equal(t, bt.Succeeded, tree.Run(0))
}
