package plan

import (
	"errors"
	"log/slog"
	"reflect"

	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/arbor/internal/expression"
)

var (
	// ErrNilKey is returned by State.Variable for a nil key.
	ErrNilKey = errors.New("variable key cannot be nil")
	// ErrUnsupportedKey is returned by State.Variable for keys that cannot be
	// mapped to a blackboard key.
	ErrUnsupportedKey = errors.New("unsupported key type")
)

// Cond is a condition matched by a Go function.
type Cond struct {
	key   any
	match func(value any) bool
}

var _ pabtpkg.Condition = (*Cond)(nil)

// NewCond returns a condition on key.
func NewCond(key any, match func(value any) bool) *Cond {
	return &Cond{key: key, match: match}
}

// Equals returns a condition satisfied when the value under key equals want.
func Equals(key, want any) *Cond {
	return NewCond(key, func(value any) bool { return reflect.DeepEqual(value, want) })
}

func (c *Cond) Key() any { return c.key }

func (c *Cond) Match(value any) bool {
	if c.match == nil {
		return false
	}
	return c.match(value)
}

// Effect is a static pabtpkg.Effect.
type Effect struct {
	key   any
	value any
}

var _ pabtpkg.Effect = (*Effect)(nil)

// NewEffect returns an effect that sets key to value.
func NewEffect(key, value any) *Effect {
	return &Effect{key: key, value: value}
}

func (e *Effect) Key() any { return e.key }

func (e *Effect) Value() any { return e.value }

// ExprEnv is the environment of an [ExprCondition]: the variable's value is
// available as value.
type ExprEnv struct {
	Value any `expr:"value"`
}

// ExprCondition is a condition matched by an expr-lang expression, such as
// "value != nil && value > 3". Programs are compiled once and shared through
// [expression.Default].
//
// Compilation and evaluation errors are logged and do not match.
type ExprCondition struct {
	key        any
	expression string
	logger     *slog.Logger
}

var _ pabtpkg.Condition = (*ExprCondition)(nil)

// NewExprCondition returns an expression condition on key. Panics if
// source is empty.
func NewExprCondition(key any, source string) *ExprCondition {
	if source == "" {
		panic("plan.NewExprCondition: expression cannot be empty")
	}
	return &ExprCondition{key: key, expression: source, logger: slog.Default()}
}

func (c *ExprCondition) Key() any { return c.key }

// Expression returns the expression source.
func (c *ExprCondition) Expression() string { return c.expression }

func (c *ExprCondition) Match(value any) bool {
	program, err := expression.Default.CompileBool(c.expression, ExprEnv{})
	if err != nil {
		c.logger.Error("[PA-BT] ExprCondition compilation error", "expression", c.expression, "error", err)
		return false
	}
	ok, err := expression.EvalBool(program, ExprEnv{Value: value})
	if err != nil {
		c.logger.Error("[PA-BT] ExprCondition evaluation error", "expression", c.expression, "error", err)
		return false
	}
	return ok
}

// Goal returns a single conjunction of conditions, for use as one
// alternative of a plan's goal.
func Goal(conds ...pabtpkg.Condition) pabtpkg.IConditions {
	return pabtpkg.IConditions(conds)
}
