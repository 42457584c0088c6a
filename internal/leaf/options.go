// Package leaf provides ready-made leaves for trees built with package bt:
// constants, Go function adapters, asynchronous actions, expr-lang
// conditions, and JavaScript leaves.
package leaf

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joeycumines/arbor/internal/expression"
)

var (
	// ErrNoTickFunction is returned when a script does not define a tick
	// function.
	ErrNoTickFunction = errors.New("script does not define a tick function")
	// ErrScriptTimeout is the reason given when a script is interrupted for
	// exceeding its timeout.
	ErrScriptTimeout = errors.New("script timed out")
	// ErrUnknownResult is returned when a script returns a value that does not
	// map to a status.
	ErrUnknownResult = errors.New("unknown script result")
)

// Option configures the leaves in this package that accept options.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	timeout time.Duration
	cache   *expression.Cache
}

func resolve(opts []Option) options {
	o := options{
		logger: slog.Default(),
		cache:  expression.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used to report leaf errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeout bounds a single script tick. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = max(d, 0)
	}
}

// WithCache sets the program cache used by expression leaves.
func WithCache(cache *expression.Cache) Option {
	return func(o *options) {
		if cache != nil {
			o.cache = cache
		}
	}
}
