package leaf

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr/vm"
	"github.com/joeycumines/arbor/internal/blackboard"
	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/expression"
)

// Expr is a condition leaf evaluating an expr-lang expression against a
// snapshot of the blackboard. Blackboard keys are the expression's
// variables; keys that are absent evaluate to nil.
//
//	battery > 0.2 && !estop
//
// A true result is [bt.Succeeded]. False, and any evaluation error, is
// [bt.Failed]; errors are logged.
type Expr struct {
	name    string
	source  string
	program *vm.Program
	logger  *slog.Logger
}

// NewExpr compiles source, returning an error if it is not a valid boolean
// expression.
func NewExpr(name, source string, opts ...Option) (*Expr, error) {
	o := resolve(opts)
	program, err := o.cache.CompileBool(source, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("leaf.NewExpr %s: %w", name, err)
	}
	return &Expr{
		name:    name,
		source:  source,
		program: program,
		logger:  o.logger,
	}, nil
}

// Source returns the expression text.
func (e *Expr) Source() string { return e.source }

func (e *Expr) Tick(world *blackboard.Blackboard) bt.Status {
	ok, err := expression.EvalBool(e.program, world.Snapshot())
	if err != nil {
		e.logger.Error("[Expr] evaluation error", "leaf", e.name, "expression", e.source, "error", err)
		return bt.Failed
	}
	if ok {
		return bt.Succeeded
	}
	return bt.Failed
}

func (e *Expr) Reset() {}

func (e *Expr) TypeName() string { return e.name }
