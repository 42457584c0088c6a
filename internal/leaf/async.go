package leaf

import (
	"context"
	"log/slog"
	"sync"

	"github.com/joeycumines/arbor/internal/bt"
)

type asyncState int

const (
	asyncIdle asyncState = iota
	asyncRunning
	asyncCompleted
)

// Async runs a function on its own goroutine, reporting [bt.Running] until
// the function returns, then [bt.Succeeded] (nil error) or [bt.Failed].
//
// The result is held until Reset, so parents that re-tick finished children
// do not start the work again. Reset cancels the context passed to a run in
// progress; a cancelled run's result is discarded.
type Async[W any] struct {
	name   string
	fn     func(ctx context.Context, world W) error
	parent context.Context
	logger *slog.Logger

	mu         sync.Mutex
	state      asyncState
	generation uint64
	cancel     context.CancelFunc
	result     bt.Status
}

// NewAsync returns an asynchronous leaf. Runs derive their context from ctx;
// once ctx is done, ticks that would start a run fail instead. Panics if fn
// is nil.
func NewAsync[W any](ctx context.Context, name string, fn func(ctx context.Context, world W) error, opts ...Option) *Async[W] {
	if fn == nil {
		panic("leaf.NewAsync: fn cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	o := resolve(opts)
	return &Async[W]{
		name:   name,
		fn:     fn,
		parent: ctx,
		logger: o.logger,
	}
}

func (a *Async[W]) Tick(world W) bt.Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case asyncRunning:
		return bt.Running
	case asyncCompleted:
		return a.result
	}

	if err := a.parent.Err(); err != nil {
		a.logger.Warn("[Async] not started", "leaf", a.name, "error", err)
		a.state = asyncCompleted
		a.result = bt.Failed
		return a.result
	}

	a.generation++
	gen := a.generation
	ctx, cancel := context.WithCancel(a.parent)
	a.cancel = cancel
	a.state = asyncRunning
	go func() {
		err := a.fn(ctx, world)
		a.finish(gen, err)
	}()
	return bt.Running
}

func (a *Async[W]) finish(gen uint64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return
	}
	a.cancel()
	a.cancel = nil
	a.state = asyncCompleted
	if err != nil {
		a.logger.Warn("[Async] failed", "leaf", a.name, "error", err)
		a.result = bt.Failed
		return
	}
	a.result = bt.Succeeded
}

func (a *Async[W]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
	a.state = asyncIdle
	a.result = bt.Initialized
}

func (a *Async[W]) TypeName() string { return a.name }
