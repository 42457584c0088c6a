package expression

import "errors"

var (
	// ErrEmptyExpression is returned when compiling an empty source string.
	ErrEmptyExpression = errors.New("expression cannot be empty")
	// ErrNotBool is returned when a program produces a non-boolean value.
	ErrNotBool = errors.New("expression did not produce a bool")
)
