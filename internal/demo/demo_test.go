package demo

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/gobt"
	"github.com/joeycumines/arbor/internal/monitor"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRobot(t *testing.T, ctx context.Context, opts ...Option) *Robot {
	t.Helper()
	robot, err := New(ctx, append([]Option{
		WithLogger(discardLogger()),
		WithScanDelay(time.Millisecond),
	}, opts...)...)
	require.NoError(t, err)
	return robot
}

func TestRobot_Topology(t *testing.T) {
	t.Parallel()

	robot := newRobot(t, t.Context())
	var types []string
	for _, n := range monitor.Snapshot(robot.Root) {
		types = append(types, n.Type)
	}
	require.Equal(t, []string{
		"ActiveSelector",
		"ActiveSequence", "BatteryLow", "Recharge",
		"Sequence", "Calibrate",
		"Parallel", "Scan", "WarmGripper",
		"CubeFound", "DeliverCube", "Report",
	}, types)
}

func TestRobot_DeliversCube(t *testing.T) {
	t.Parallel()

	robot := newRobot(t, t.Context())
	tree := robot.Tree()
	status, err := tree.RunContext(t.Context(), math.Inf(1))
	require.NoError(t, err)
	require.Equal(t, bt.Succeeded, status)

	w := robot.World
	require.Equal(t, "bin", w.Get(KeyCube))
	require.Equal(t, true, w.Get(KeyCalibrated))
	require.Equal(t, true, w.Get(KeyScanned))
	require.Equal(t, GripperReady, w.Get(KeyGripper))
	require.Equal(t, 100-3*MoveCost, w.Get(KeyBattery))
	require.Equal(t, "cube at bin, battery 85, report 1", w.Get(KeyReport))
	require.Greater(t, tree.Ticks(), uint64(3))
}

func TestRobot_RechargesFirst(t *testing.T) {
	t.Parallel()

	robot := newRobot(t, t.Context(), WithBattery(10))
	tree := robot.Tree()

	require.Equal(t, bt.Running, tree.Tick())
	require.Equal(t, 10+ChargeRate, robot.World.Get(KeyBattery))
	require.Equal(t, false, robot.World.Get(KeyHomed))

	status, err := tree.RunContext(t.Context(), math.Inf(1))
	require.NoError(t, err)
	require.Equal(t, bt.Succeeded, status)
	require.Equal(t, 10+ChargeRate-3*MoveCost, robot.World.Get(KeyBattery))
	require.Equal(t, "bin", robot.World.Get(KeyCube))
}

func TestRobot_CancelledScanFails(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	robot := newRobot(t, ctx)

	status, err := robot.Tree().RunContext(t.Context(), math.Inf(1))
	require.NoError(t, err)
	require.Equal(t, bt.Failed, status)
	require.Equal(t, "shelf", robot.World.Get(KeyCube))
	require.Nil(t, robot.World.Get(KeyReport))
}

func TestRobot_GoBehaviortreeDriver(t *testing.T) {
	t.Parallel()

	robot := newRobot(t, t.Context())
	status, err := gobt.Run(t.Context(), robot.Tree(), time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, bt.Succeeded, status)
	require.Equal(t, "bin", robot.World.Get(KeyCube))
}

func TestRobot_ObserverSeesEveryTick(t *testing.T) {
	t.Parallel()

	robot := newRobot(t, t.Context())
	var frames []monitor.Frame
	tree := robot.Tree(bt.WithObserver(bt.ObserverFunc(func(event bt.TickEvent) {
		frames = append(frames, monitor.NewFrame(Name, robot.Root, event))
	})))
	require.Equal(t, bt.Succeeded, tree.Run(math.Inf(1)))
	require.Len(t, frames, int(tree.Ticks()))
	last := frames[len(frames)-1]
	require.Equal(t, bt.Succeeded, last.Status)
	require.Equal(t, bt.Succeeded, last.Nodes[0].Status)
}
