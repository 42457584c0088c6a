package leaf

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/joeycumines/arbor/internal/blackboard"
	"github.com/joeycumines/arbor/internal/bt"
)

// JS status strings, available to scripts as bt.running, bt.success and
// bt.failure.
const (
	JSStatusRunning = "running"
	JSStatusSuccess = "success"
	JSStatusFailure = "failure"
)

// Script is a leaf implemented in JavaScript. The source must define a
// global function tick(blackboard), and may define reset():
//
//	function tick(bb) {
//	    if (bb.get("battery") < 0.2) return bt.failure;
//	    bb.set("reported", true);
//	    return bt.success;
//	}
//
// tick may return one of the bt.* status strings, a boolean (true is
// success), or nothing (success). Thrown exceptions, timeouts and any
// other result are logged and reported as [bt.Failed].
//
// Each Script owns a private runtime. Ticks are serialized.
type Script struct {
	name    string
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	vm      *goja.Runtime
	tick    goja.Callable
	reset   goja.Callable
	world   *blackboard.Blackboard
	exposed goja.Value
}

// NewScript compiles and runs source, returning an error if it fails or does
// not define tick.
func NewScript(name, source string, opts ...Option) (*Script, error) {
	o := resolve(opts)
	s := &Script{
		name:    name,
		timeout: o.timeout,
		logger:  o.logger,
		vm:      goja.New(),
	}

	status := s.vm.NewObject()
	_ = status.Set("running", JSStatusRunning)
	_ = status.Set("success", JSStatusSuccess)
	_ = status.Set("failure", JSStatusFailure)
	if err := s.vm.Set("bt", status); err != nil {
		return nil, err
	}
	if err := s.vm.Set("log", func(msg string) {
		s.logger.Info("[Script] "+msg, "leaf", s.name)
	}); err != nil {
		return nil, err
	}

	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, fmt.Errorf("leaf.NewScript %s: %w", name, err)
	}
	if _, err := s.vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("leaf.NewScript %s: %w", name, err)
	}

	var ok bool
	if s.tick, ok = goja.AssertFunction(s.vm.Get("tick")); !ok {
		return nil, fmt.Errorf("leaf.NewScript %s: %w", name, ErrNoTickFunction)
	}
	s.reset, _ = goja.AssertFunction(s.vm.Get("reset"))
	return s, nil
}

func (s *Script) Tick(world *blackboard.Blackboard) bt.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if world != s.world || s.exposed == nil {
		s.world = world
		s.exposed = world.ExposeToJS(s.vm)
	}

	result, err := s.call(s.tick, s.exposed)
	if err != nil {
		s.logger.Error("[Script] tick error", "leaf", s.name, "error", err)
		return bt.Failed
	}
	status, err := jsStatus(result)
	if err != nil {
		s.logger.Error("[Script] invalid result", "leaf", s.name, "error", err)
		return bt.Failed
	}
	return status
}

func (s *Script) Reset() {
	if s.reset == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.call(s.reset); err != nil {
		s.logger.Error("[Script] reset error", "leaf", s.name, "error", err)
	}
}

func (s *Script) TypeName() string { return s.name }

// call invokes fn, interrupting the runtime if it exceeds the timeout.
func (s *Script) call(fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	if s.timeout <= 0 {
		return fn(goja.Undefined(), args...)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			s.vm.Interrupt(ErrScriptTimeout)
		case <-done:
		}
	}()

	result, err := fn(goja.Undefined(), args...)
	close(done)
	<-stopped
	s.vm.ClearInterrupt()
	return result, err
}

func jsStatus(v goja.Value) (bt.Status, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return bt.Succeeded, nil
	}
	switch x := v.Export().(type) {
	case bool:
		if x {
			return bt.Succeeded, nil
		}
		return bt.Failed, nil
	case string:
		switch strings.ToLower(x) {
		case JSStatusSuccess, "succeeded":
			return bt.Succeeded, nil
		case JSStatusFailure, "failed":
			return bt.Failed, nil
		case JSStatusRunning:
			return bt.Running, nil
		}
		return bt.Failed, fmt.Errorf("%q: %w", x, ErrUnknownResult)
	default:
		return bt.Failed, fmt.Errorf("%T: %w", x, ErrUnknownResult)
	}
}
