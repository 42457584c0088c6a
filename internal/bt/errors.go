package bt

import "errors"

var (
	// ErrNilChild indicates a composite was given a nil child.
	ErrNilChild = errors.New("nil child node")

	// ErrChildOwned indicates a child is already owned by another composite,
	// or appears more than once in the same child list.
	ErrChildOwned = errors.New("child node already has a parent")

	// ErrInvalidThreshold indicates a Parallel required-successes count
	// outside [0, len(children)].
	ErrInvalidThreshold = errors.New("invalid parallel threshold")

	// ErrUnknownStatus indicates a status label could not be parsed.
	ErrUnknownStatus = errors.New("unknown status")
)
