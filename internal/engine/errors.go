package engine

import (
	"errors"
	"fmt"
)

// EvalError represents an error detected while evaluating a predicate.
//
// Evaluation errors include:
//   - Unsupported value: an attribute produced a value with no IR form
//   - Unknown predicate: a node type this engine cannot evaluate
//
// EvalError includes structured fields for diagnostics.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// Attr is the qualified attribute being evaluated, if any.
	Attr string
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeUnsupportedValue indicates an attribute value has no IR form.
	ErrCodeUnsupportedValue EvalErrorCode = "UNSUPPORTED_VALUE"

	// ErrCodeUnknownPredicate indicates a node type the engine cannot evaluate.
	ErrCodeUnknownPredicate EvalErrorCode = "UNKNOWN_PREDICATE"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%s: %s (attr=%s)", e.Code, e.Message, e.Attr)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnsupportedValue returns true if the error is an unsupported value error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedValue(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnsupportedValue
	}
	return false
}

// IsUnknownPredicate returns true if the error is an unknown predicate error.
// Uses errors.As to handle wrapped errors.
func IsUnknownPredicate(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnknownPredicate
	}
	return false
}

// newUnsupportedValueError creates an EvalError for a value with no IR form.
func newUnsupportedValueError(attr string, cause error) *EvalError {
	return &EvalError{
		Code:    ErrCodeUnsupportedValue,
		Message: cause.Error(),
		Attr:    attr,
	}
}

// newUnknownPredicateError creates an EvalError for an unknown node type.
func newUnknownPredicateError(node any) *EvalError {
	return &EvalError{
		Code:    ErrCodeUnknownPredicate,
		Message: fmt.Sprintf("cannot evaluate %T", node),
	}
}
