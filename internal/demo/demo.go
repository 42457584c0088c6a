// Package demo assembles a pick-and-place robot tree that exercises every
// kind of leaf: an expression guard, Go function and condition leaves, a
// go-behaviortree subtree, an asynchronous scan, a PA-BT planner and a
// JavaScript reporter. It backs the run, describe and watch commands.
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	behaviortree "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/arbor/internal/blackboard"
	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/gobt"
	"github.com/joeycumines/arbor/internal/leaf"
	"github.com/joeycumines/arbor/internal/plan"
)

// Blackboard keys.
const (
	KeyBattery    = "battery"
	KeyCalibrated = "calibrated"
	KeyHomed      = "homed"
	KeyScanned    = "scanned"
	KeyGripper    = "gripperTemp"
	KeyAtCube     = "atCube"
	KeyHolding    = "holding"
	KeyCube       = "cube"
	KeyReport     = "report"
)

const (
	// LowBattery is the charge below which the robot stops to recharge.
	LowBattery = 20.0
	// ChargeRate is the charge gained per tick while recharging.
	ChargeRate = 25.0
	// MoveCost is the charge consumed by each planned action.
	MoveCost = 5.0
	// GripperReady is the number of ticks the gripper takes to warm up.
	GripperReady = 3
)

// Name identifies the demo tree in frames and spans.
const Name = "pick-and-place"

// World is the state type of the demo tree.
type World = *blackboard.Blackboard

const reportScript = `
var reports = 0;

function tick(bb) {
	reports++;
	bb.set("report", "cube at " + bb.get("cube") + ", battery " + bb.get("battery") + ", report " + reports);
	log("delivery reported");
	return bt.success;
}
`

// Option configures [New].
type Option func(*options)

type options struct {
	logger        *slog.Logger
	battery       float64
	scanDelay     time.Duration
	scriptTimeout time.Duration
}

// WithLogger sets the logger shared by every leaf.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBattery sets the initial charge, in percent. Defaults to 100.
func WithBattery(charge float64) Option {
	return func(o *options) { o.battery = charge }
}

// WithScanDelay sets how long the asynchronous scan takes.
func WithScanDelay(d time.Duration) Option {
	return func(o *options) { o.scanDelay = d }
}

// WithScriptTimeout bounds each call into the report script.
func WithScriptTimeout(d time.Duration) Option {
	return func(o *options) { o.scriptTimeout = d }
}

// Robot is an assembled demo: its world and the root of its tree.
type Robot struct {
	World  World
	Root   *bt.Node[World]
	logger *slog.Logger
}

// New builds the demo. The scan leaf derives its context from ctx.
//
// The tree is:
//
//	ActiveSelector
//	├── ActiveSequence
//	│   ├── BatteryLow (expr)
//	│   └── Recharge (func)
//	└── Sequence
//	    ├── Calibrate (go-behaviortree)
//	    ├── Parallel(2)
//	    │   ├── Scan (async)
//	    │   └── WarmGripper (func)
//	    ├── CubeFound (condition)
//	    ├── DeliverCube (PA-BT)
//	    └── Report (JavaScript)
func New(ctx context.Context, opts ...Option) (*Robot, error) {
	o := options{
		logger:        slog.Default(),
		battery:       100,
		scanDelay:     50 * time.Millisecond,
		scriptTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	world := NewWorld(o.battery)
	root, err := build(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	return &Robot{World: world, Root: root, logger: o.logger}, nil
}

// NewWorld returns the initial world: the robot docked with the given
// charge, and the cube on its shelf.
func NewWorld(battery float64) World {
	return blackboard.New(map[string]any{
		KeyBattery:    battery,
		KeyCalibrated: false,
		KeyHomed:      false,
		KeyScanned:    false,
		KeyGripper:    0,
		KeyAtCube:     false,
		KeyHolding:    false,
		KeyCube:       "shelf",
	})
}

// Tree returns a tree driving the robot's root against its world.
func (r *Robot) Tree(opts ...bt.TreeOption) *bt.Tree[World] {
	return bt.NewTree(r.World, r.Root, append([]bt.TreeOption{bt.WithLogger(r.logger)}, opts...)...)
}

func build(ctx context.Context, o options) (*bt.Node[World], error) {
	leafOpts := []leaf.Option{leaf.WithLogger(o.logger), leaf.WithTimeout(o.scriptTimeout)}

	batteryLow, err := leaf.NewExpr("BatteryLow", fmt.Sprintf("battery < %g", LowBattery), leafOpts...)
	if err != nil {
		return nil, err
	}
	recharge := leaf.NewFunc("Recharge", func(w World) bt.Status {
		w.Update(KeyBattery, func(old any, _ bool) any {
			charge, _ := old.(float64)
			return min(charge+ChargeRate, 100)
		})
		return bt.Running
	})
	guard, err := bt.NewActiveSequence(bt.NewLeaf[World](batteryLow), bt.NewLeaf[World](recharge))
	if err != nil {
		return nil, err
	}

	calibrate := gobt.NewLeaf("Calibrate", calibration, gobt.WithLogger(o.logger))

	scan := leaf.NewAsync(ctx, "Scan", func(ctx context.Context, w World) error {
		timer := time.NewTimer(o.scanDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		w.Set(KeyScanned, true)
		return nil
	}, leafOpts...)
	warm := leaf.NewFunc("WarmGripper", func(w World) bt.Status {
		var temp int
		w.Update(KeyGripper, func(old any, _ bool) any {
			temp, _ = old.(int)
			if temp < GripperReady {
				temp++
			}
			return temp
		})
		if temp >= GripperReady {
			return bt.Succeeded
		}
		return bt.Running
	})
	prepare, err := bt.NewParallel(2, bt.NewLeaf[World](scan), bt.NewLeaf[World](warm))
	if err != nil {
		return nil, err
	}

	cubeFound := leaf.NewCondition("CubeFound", func(w World) bool {
		scanned, err := w.Bool(KeyScanned)
		return err == nil && scanned
	})

	deliver := plan.NewLeaf("DeliverCube", deliveryState,
		plan.Goal(plan.Equals(KeyCube, "bin")),
	).WithLogger(o.logger)

	report, err := leaf.NewScript("Report", reportScript, leafOpts...)
	if err != nil {
		return nil, err
	}

	mission, err := bt.NewSequence(
		bt.NewLeaf[World](calibrate),
		prepare,
		bt.NewLeaf[World](cubeFound),
		bt.NewLeaf[World](deliver),
		bt.NewLeaf[World](report),
	)
	if err != nil {
		return nil, err
	}
	return bt.NewActiveSelector(guard, mission)
}

// calibration homes the axes, taking one tick, then marks the robot
// calibrated. Memorize resumes the sequence at the running step.
func calibration(w World) behaviortree.Node {
	var homing int
	home := behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		if homing++; homing < 2 {
			return behaviortree.Running, nil
		}
		w.Set(KeyHomed, true)
		return behaviortree.Success, nil
	})
	zero := behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		if homed, err := w.Bool(KeyHomed); err != nil || !homed {
			return behaviortree.Failure, err
		}
		w.Set(KeyCalibrated, true)
		return behaviortree.Success, nil
	})
	return behaviortree.New(behaviortree.Memorize(behaviortree.Sequence), home, zero)
}

// deliveryState registers the actions available to the planner: move to the
// cube, pick it, and place it in the bin. Each costs [MoveCost] charge.
func deliveryState(w World) *plan.State {
	state := plan.NewState(w)
	act := func(fn func()) behaviortree.Node {
		return behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
			fn()
			w.Update(KeyBattery, func(old any, _ bool) any {
				charge, _ := old.(float64)
				return max(charge-MoveCost, 0)
			})
			return behaviortree.Success, nil
		})
	}
	state.RegisterAction("MoveToCube", plan.NewAction("MoveToCube",
		nil,
		pabtpkg.Effects{plan.NewEffect(KeyAtCube, true)},
		act(func() { w.Set(KeyAtCube, true) }),
	))
	state.RegisterAction("Pick", plan.NewAction("Pick",
		[]pabtpkg.IConditions{plan.Goal(plan.NewExprCondition(KeyAtCube, "value == true"))},
		pabtpkg.Effects{plan.NewEffect(KeyHolding, true)},
		act(func() { w.Set(KeyHolding, true) }),
	))
	state.RegisterAction("Place", plan.NewAction("Place",
		[]pabtpkg.IConditions{plan.Goal(plan.Equals(KeyHolding, true))},
		pabtpkg.Effects{plan.NewEffect(KeyCube, "bin")},
		act(func() {
			w.Set(KeyCube, "bin")
			w.Set(KeyHolding, false)
			w.Set(KeyAtCube, false)
		}),
	))
	return state
}
