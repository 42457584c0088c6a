package blackboard

import "errors"

var (
	// ErrMissingKey is returned by the typed accessors when a key is absent.
	ErrMissingKey = errors.New("missing key")
	// ErrWrongType is returned by the typed accessors when a value has an
	// unexpected type.
	ErrWrongType = errors.New("wrong type")
)
