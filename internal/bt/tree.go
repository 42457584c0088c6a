package bt

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// TickEvent describes a completed tick of a [Tree].
type TickEvent struct {
	// Seq is the 1-based sequence number of the tick since construction.
	Seq uint64
	// Status is the status returned by the root.
	Status Status
	// Started is when the tick began.
	Started time.Time
	// Elapsed is how long the tick took.
	Elapsed time.Duration
}

// Observer is notified synchronously after every tick of a [Tree].
type Observer interface {
	ObserveTick(event TickEvent)
}

// ObserverFunc adapts a function to the [Observer] interface.
type ObserverFunc func(event TickEvent)

// ObserveTick calls f(event).
func (f ObserverFunc) ObserveTick(event TickEvent) { f(event) }

// TreeOption configures a [Tree].
type TreeOption func(*treeOptions)

type treeOptions struct {
	logger    *slog.Logger
	observers []Observer
}

// WithLogger sets the logger used by the tree. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) TreeOption {
	return func(o *treeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer, called after every tick in
// registration order.
func WithObserver(observer Observer) TreeOption {
	return func(o *treeOptions) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// Tree drives a root node against a world state.
//
// The world value is handed to every node on every tick; it is never copied
// per node. W should therefore be a reference type (typically a pointer) when
// nodes mutate state or when the caller wants to retain access to it. The
// tree performs no locking: if the same world is shared with other trees or
// goroutines, synchronizing access is the caller's responsibility.
type Tree[W any] struct {
	world     W
	root      *Node[W]
	logger    *slog.Logger
	observers []Observer
	ticks     uint64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTree creates a tree with the given world state and root node. Panics if
// root is nil.
func NewTree[W any](world W, root *Node[W], opts ...TreeOption) *Tree[W] {
	if root == nil {
		panic("bt.NewTree: root cannot be nil")
	}
	o := treeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[W]{
		world:     world,
		root:      root,
		logger:    o.logger,
		observers: o.observers,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Root returns the root node.
func (t *Tree[W]) Root() *Node[W] { return t.root }

// World returns the world state handed to every node.
func (t *Tree[W]) World() W { return t.world }

// Ticks returns the number of ticks performed since construction.
func (t *Tree[W]) Ticks() uint64 { return t.ticks }

// Tick ticks the root node once.
func (t *Tree[W]) Tick() Status {
	started := t.now()
	status := t.root.Tick(t.world)
	t.ticks++
	event := TickEvent{
		Seq:     t.ticks,
		Status:  status,
		Started: started,
		Elapsed: t.now().Sub(started),
	}
	t.logger.Debug("[Tree] tick", "seq", event.Seq, "status", status.String(), "elapsed", event.Elapsed)
	for _, o := range t.observers {
		o.ObserveTick(event)
	}
	return status
}

// Reset resets the root node and its subtree so the tree can be run again.
func (t *Tree[W]) Reset() {
	t.root.Reset()
	t.logger.Debug("[Tree] reset")
}

// Run ticks the tree until it succeeds or fails, at the given frequency in
// hertz.
//
// A frequency of zero ticks exactly once and returns whatever status that
// produced (the only case where Run may return Running). A frequency of
// math.Inf(1) ticks back-to-back without sleeping. Otherwise, if a tick
// finishes within the period 1/frequency, Run sleeps for the remainder; a
// tick that overruns the period is not compensated for. Negative and NaN
// frequencies are treated as zero.
//
// Run cannot be cancelled; see [Tree.RunContext].
func (t *Tree[W]) Run(frequency float64) Status {
	status, _ := t.RunContext(context.Background(), frequency)
	return status
}

// RunContext behaves like [Tree.Run], but stops early when ctx is done,
// returning the last status along with ctx.Err(). The context is checked
// between ticks; a tick in progress is never interrupted.
func (t *Tree[W]) RunContext(ctx context.Context, frequency float64) (Status, error) {
	if frequency <= 0 || math.IsNaN(frequency) {
		return t.Tick(), nil
	}

	var period time.Duration
	if !math.IsInf(frequency, 1) {
		period = time.Duration(float64(time.Second) / frequency)
	}
	t.logger.Debug("[Tree] run", "frequency", frequency, "period", period)

	status := Running
	for !status.IsDone() {
		if err := ctx.Err(); err != nil {
			return status, err
		}
		started := t.now()
		status = t.Tick()
		if status.IsDone() || period <= 0 {
			continue
		}
		if elapsed := t.now().Sub(started); elapsed < period {
			if err := t.sleep(ctx, period-elapsed); err != nil {
				return status, err
			}
		}
	}

	t.logger.Info("[Tree] run finished", "status", status.String(), "ticks", t.ticks)
	return status, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if ctx.Done() == nil {
		time.Sleep(d)
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
