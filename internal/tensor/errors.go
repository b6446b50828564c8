package tensor

import "errors"

// Error classes returned by tensor operations. Use errors.Is to test for them.
var (
	// ErrInvalidArgument reports a shape or rank violation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange reports an index outside its dimension.
	ErrOutOfRange = errors.New("index out of range")

	// ErrIO reports a file that could not be opened or read.
	ErrIO = errors.New("i/o failure")

	// ErrParse reports a malformed numeric field in textual input.
	ErrParse = errors.New("parse error")
)
