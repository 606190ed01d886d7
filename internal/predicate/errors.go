package predicate

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every error the factory and the builder
// report for bad input: nil handles, nil predicates, wrong operand count or
// operands that do not fit the attribute.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes one rejected argument.
type ArgumentError struct {
	// Op is the operation that rejected the argument.
	Op Op

	// Arg names the argument ("attr", "value", "values[2]", ...).
	Arg string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s %s", ErrInvalidArgument, e.Op, e.Arg, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidArgument) hold.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// IsInvalidArgument returns true if err is or wraps ErrInvalidArgument.
// Uses errors.Is to handle wrapped and joined errors.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// AsArgumentError extracts the first *ArgumentError from err.
func AsArgumentError(err error) (*ArgumentError, bool) {
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func invalid(op Op, arg, format string, args ...any) error {
	return &ArgumentError{Op: op, Arg: arg, Reason: fmt.Sprintf(format, args...)}
}
