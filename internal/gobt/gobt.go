// Package gobt bridges trees built with package bt and
// github.com/joeycumines/go-behaviortree, in both directions: a [bt.Tree] can
// be exposed as a go-behaviortree node and driven by its tickers, and a
// go-behaviortree node can be used as a leaf.
package gobt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	behaviortree "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/arbor/internal/bt"
)

// ToStatus converts a go-behaviortree status. Unknown values map to
// [bt.Failed].
func ToStatus(s behaviortree.Status) bt.Status {
	switch s {
	case behaviortree.Running:
		return bt.Running
	case behaviortree.Success:
		return bt.Succeeded
	default:
		return bt.Failed
	}
}

// FromStatus converts a status to its go-behaviortree equivalent.
// [bt.Initialized] has no equivalent, and maps to Running.
func FromStatus(s bt.Status) behaviortree.Status {
	switch s {
	case bt.Succeeded:
		return behaviortree.Success
	case bt.Failed:
		return behaviortree.Failure
	default:
		return behaviortree.Running
	}
}

// Node exposes tree as a go-behaviortree leaf node. Each tick of the node
// ticks the tree once.
func Node[W any](tree *bt.Tree[W]) behaviortree.Node {
	return behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		return FromStatus(tree.Tick()), nil
	})
}

// untilDone ticks tree, recording the terminal status in final once it
// succeeds or fails. The node then reports Failure, which stops a ticker
// built by behaviortree.NewTickerStopOnFailure without an error, leaving any
// manager it belongs to running.
func untilDone[W any](tree *bt.Tree[W], final *bt.Status) behaviortree.Node {
	return behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		status := tree.Tick()
		if status.IsDone() {
			*final = status
			return behaviortree.Failure, nil
		}
		return behaviortree.Running, nil
	})
}

// tickerResult waits for ticker, then reports why it stopped before the tree
// finished, if it did.
func tickerResult(ctx context.Context, ticker behaviortree.Ticker, final *bt.Status) error {
	<-ticker.Done()
	if final.IsDone() {
		return nil
	}
	if err := ticker.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

// Run drives tree with a go-behaviortree ticker, ticking every period until
// the tree succeeds or fails, or ctx is done.
func Run[W any](ctx context.Context, tree *bt.Tree[W], period time.Duration) (bt.Status, error) {
	final := bt.Running
	ticker := behaviortree.NewTickerStopOnFailure(ctx, period, untilDone(tree, &final))
	err := tickerResult(ctx, ticker, &final)
	return final, err
}

// RunAll drives several trees concurrently, each on its own ticker, under a
// single go-behaviortree manager. It returns once every tree has finished, or
// ctx is done, with the final status of each tree in argument order.
//
// Trees must not share a world unless the world is safe for concurrent use.
func RunAll[W any](ctx context.Context, period time.Duration, trees ...*bt.Tree[W]) ([]bt.Status, error) {
	manager := behaviortree.NewManager()
	defer manager.Stop()

	finals := make([]bt.Status, len(trees))
	tickers := make([]behaviortree.Ticker, len(trees))
	for i, tree := range trees {
		finals[i] = bt.Running
		tickers[i] = behaviortree.NewTickerStopOnFailure(ctx, period, untilDone(tree, &finals[i]))
		if err := manager.Add(tickers[i]); err != nil {
			tickers[i].Stop()
			return finals, fmt.Errorf("gobt: add ticker %d: %w", i, err)
		}
	}

	var errs []error
	for i, ticker := range tickers {
		if err := tickerResult(ctx, ticker, &finals[i]); err != nil {
			errs = append(errs, fmt.Errorf("tree %d: %w", i, err))
		}
	}
	return finals, errors.Join(errs...)
}

// Leaf adapts a go-behaviortree node to a leaf.
//
// The node is built on first tick by a factory receiving the world, and is
// discarded on Reset, so that stateful go-behaviortree ticks (such as those
// wrapped by behaviortree.Memorize) start over. Errors returned by the node are
// logged and reported as [bt.Failed].
type Leaf[W any] struct {
	name    string
	factory func(world W) behaviortree.Node
	node    behaviortree.Node
	logger  *slog.Logger
}

// LeafOption configures a [Leaf].
type LeafOption func(*leafOptions)

type leafOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report node errors.
func WithLogger(logger *slog.Logger) LeafOption {
	return func(o *leafOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewLeaf returns a leaf backed by the node built by factory. Panics if
// factory is nil.
func NewLeaf[W any](name string, factory func(world W) behaviortree.Node, opts ...LeafOption) *Leaf[W] {
	if factory == nil {
		panic("gobt.NewLeaf: factory cannot be nil")
	}
	o := leafOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Leaf[W]{
		name:    name,
		factory: factory,
		logger:  o.logger,
	}
}

func (l *Leaf[W]) Tick(world W) bt.Status {
	if l.node == nil {
		l.node = l.factory(world)
		if l.node == nil {
			l.logger.Error("[gobt] factory returned nil node", "leaf", l.name)
			return bt.Failed
		}
	}
	status, err := l.node.Tick()
	if err != nil {
		l.logger.Warn("[gobt] node error", "leaf", l.name, "error", err)
		return bt.Failed
	}
	return ToStatus(status)
}

func (l *Leaf[W]) Reset() { l.node = nil }

func (l *Leaf[W]) TypeName() string { return l.name }
