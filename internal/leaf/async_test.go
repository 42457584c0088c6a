package leaf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/stretchr/testify/require"
)

func waitDone[W any](t *testing.T, a *Async[W], world W) bt.Status {
	t.Helper()
	var status bt.Status
	require.Eventually(t, func() bool {
		status = a.Tick(world)
		return status.IsDone()
	}, 5*time.Second, time.Millisecond)
	return status
}

func TestAsync_Succeeds(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var runs int
	a := NewAsync(context.Background(), "Move", func(ctx context.Context, w *int) error {
		<-release
		runs++
		*w = 42
		return nil
	}, WithLogger(discardLogger()))

	w := new(int)
	require.Equal(t, bt.Running, a.Tick(w))
	require.Equal(t, bt.Running, a.Tick(w))
	close(release)

	require.Equal(t, bt.Succeeded, waitDone(t, a, w))
	require.Equal(t, 42, *w)

	// the result is held; the function is not run again
	require.Equal(t, bt.Succeeded, a.Tick(w))
	require.Equal(t, 1, runs)
	require.Equal(t, "Move", a.TypeName())
}

func TestAsync_Fails(t *testing.T) {
	t.Parallel()

	a := NewAsync(context.Background(), "Grip", func(context.Context, int) error {
		return errors.New("gripper jammed")
	}, WithLogger(discardLogger()))

	require.Equal(t, bt.Running, a.Tick(0))
	require.Equal(t, bt.Failed, waitDone(t, a, 0))
}

func TestAsync_ResetCancelsAndRestarts(t *testing.T) {
	t.Parallel()

	started := make(chan context.Context, 2)
	a := NewAsync(context.Background(), "Wait", func(ctx context.Context, _ int) error {
		started <- ctx
		<-ctx.Done()
		return ctx.Err()
	}, WithLogger(discardLogger()))

	require.Equal(t, bt.Running, a.Tick(0))
	first := <-started

	a.Reset()
	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reset did not cancel the run")
	}

	// the cancelled run's error must not leak into the new run
	require.Equal(t, bt.Running, a.Tick(0))
	second := <-started
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, bt.Running, a.Tick(0))
	require.NoError(t, second.Err())

	a.Reset()
}

func TestAsync_ParentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAsync(ctx, "Never", func(context.Context, int) error {
		t.Error("must not run")
		return nil
	}, WithLogger(discardLogger()))

	require.Equal(t, bt.Failed, a.Tick(0))
	require.Equal(t, bt.Failed, a.Tick(0))
}

func TestAsync_InParallel(t *testing.T) {
	t.Parallel()

	var runs int
	done := make(chan struct{})
	a := NewAsync(context.Background(), "Once", func(context.Context, int) error {
		runs++
		close(done)
		return nil
	}, WithLogger(discardLogger()))

	par := bt.Must(bt.NewParallel(1, bt.NewLeaf[int](a), AlwaysRunning[int]()))
	require.Equal(t, bt.Running, par.Tick(0))
	<-done
	require.Eventually(t, func() bool { return par.Tick(0) == bt.Succeeded }, 5*time.Second, time.Millisecond)
	require.Equal(t, bt.Succeeded, par.Tick(0))
	require.Equal(t, 1, runs)
}

func TestNewAsync_NilPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewAsync[int](context.Background(), "Nil", nil) })
}
