package predicate

import (
	"fmt"
	"slices"

	"github.com/roach88/specq/internal/metamodel"
)

// Op names an atomic predicate operator. The string form is the name used
// in filter step files and canonical encodings.
type Op string

const (
	OpEqual          Op = "equal"
	OpNotEqual       Op = "not_equal"
	OpLike           Op = "like"
	OpNotLike        Op = "not_like"
	OpEqualOrLike    Op = "equal_or_like"
	OpIsNull         Op = "is_null"
	OpIsNotNull      Op = "is_not_null"
	OpIsTrue         Op = "is_true"
	OpIsFalse        Op = "is_false"
	OpGreaterThan    Op = "gt"
	OpGreaterOrEqual Op = "ge"
	OpLessThan       Op = "lt"
	OpLessOrEqual    Op = "le"
	OpBetween        Op = "between"
	OpIn             Op = "in"
)

// variadic marks an operator taking any number of operands.
const variadic = -1

// opSpec describes the run-time contract of an operator.
type opSpec struct {
	arity   int                       // operand count, or variadic
	kind    func(metamodel.Kind) bool // attribute kind requirement (nil = any)
	need    string                    // describes kind for error messages
	nilable bool                      // nil operands allowed
}

func textKind(k metamodel.Kind) bool { return k == metamodel.KindString }
func boolKind(k metamodel.Kind) bool { return k == metamodel.KindBool }

var ops = map[Op]opSpec{
	OpEqual:          {arity: 1, nilable: true},
	OpNotEqual:       {arity: 1, nilable: true},
	OpLike:           {arity: 1, kind: textKind, need: "a text attribute"},
	OpNotLike:        {arity: 1, kind: textKind, need: "a text attribute"},
	OpEqualOrLike:    {arity: 1, kind: textKind, need: "a text attribute"},
	OpIsNull:         {arity: 0},
	OpIsNotNull:      {arity: 0},
	OpIsTrue:         {arity: 0, kind: boolKind, need: "a boolean attribute"},
	OpIsFalse:        {arity: 0, kind: boolKind, need: "a boolean attribute"},
	OpGreaterThan:    {arity: 1, kind: metamodel.Kind.Ordered, need: "an ordered attribute"},
	OpGreaterOrEqual: {arity: 1, kind: metamodel.Kind.Ordered, need: "an ordered attribute"},
	OpLessThan:       {arity: 1, kind: metamodel.Kind.Ordered, need: "an ordered attribute"},
	OpLessOrEqual:    {arity: 1, kind: metamodel.Kind.Ordered, need: "an ordered attribute"},
	OpBetween:        {arity: 2, kind: metamodel.Kind.Ordered, need: "an ordered attribute"},
	OpIn:             {arity: variadic, nilable: true},
}

// Ops returns every atomic operator in a stable order.
func Ops() []Op {
	out := make([]Op, 0, len(ops))
	for op := range ops {
		out = append(out, op)
	}
	slices.Sort(out)
	return out
}

// ParseOp resolves an operator name.
func ParseOp(name string) (Op, error) {
	op := Op(name)
	if _, ok := ops[op]; !ok {
		return "", &ArgumentError{Op: op, Arg: "op", Reason: fmt.Sprintf("unknown operator %q", name)}
	}
	return op, nil
}

// Arity returns the operand count op takes, or -1 for variadic operators.
func (op Op) Arity() int {
	spec, ok := ops[op]
	if !ok {
		return 0
	}
	return spec.arity
}

// symbol returns the SQL-like infix form of a Comparison operator.
func (op Op) symbol() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpGreaterThan:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessOrEqual:
		return "<="
	default:
		return string(op)
	}
}

// Symbol returns the infix operator a Comparison with op renders as.
func Symbol(op Op) string { return op.symbol() }
