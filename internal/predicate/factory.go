package predicate

import (
	"cmp"
	"fmt"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
)

// New builds the atomic predicate for op over attr.
//
// It is the run-time form of the typed constructors below and applies the
// same rules: attr must be non-nil, the operand count must match op, attr
// must have the kind op requires and every operand must convert to attr's
// value type. Nil operands are accepted by OpEqual and OpNotEqual (yielding
// a Null node) and as OpIn members; any other nil operand is rejected.
//
// For OpIn a single slice operand is expanded into its elements, so
// New(OpIn, attr, []string{"a", "b"}) equals New(OpIn, attr, "a", "b").
// An empty or nil slice yields an In that matches nothing.
func New[E any](op Op, attr metamodel.Attr[E], operands ...any) (Predicate[E], error) {
	spec, ok := ops[op]
	if !ok {
		return nil, invalid(op, "op", "unknown operator")
	}
	if metamodel.IsNil(attr) {
		return nil, invalid(op, "attr", "must not be nil")
	}
	if spec.kind != nil && !spec.kind(attr.Kind()) {
		return nil, invalid(op, "attr", "must be %s, got %s", spec.need, describe(attr))
	}

	if op == OpIn {
		if len(operands) == 1 {
			if elems, isSlice := spread(operands[0]); isSlice && attr.Kind() != metamodel.KindOther {
				operands = elems
			}
		}
		return newIn(attr, operands)
	}

	if len(operands) != spec.arity {
		return nil, invalid(op, "operands", "want %d, got %d", spec.arity, len(operands))
	}
	for i, v := range operands {
		if isNilOperand(v) && !spec.nilable {
			return nil, invalid(op, operandName(spec, i), "must not be nil")
		}
	}

	switch op {
	case OpIsNull:
		return &Null[E]{Attr: attr}, nil
	case OpIsNotNull:
		return &Null[E]{Attr: attr, Negated: true}, nil
	case OpIsTrue:
		return &Comparison[E]{Attr: attr, Op: OpEqual, Value: ir.IRBool(true)}, nil
	case OpIsFalse:
		return &Comparison[E]{Attr: attr, Op: OpEqual, Value: ir.IRBool(false)}, nil
	case OpBetween:
		lower, err := literal(op, "lower", attr, operands[0])
		if err != nil {
			return nil, err
		}
		upper, err := literal(op, "upper", attr, operands[1])
		if err != nil {
			return nil, err
		}
		return &Between[E]{Attr: attr, Lower: lower, Upper: upper}, nil
	}

	if isNilOperand(operands[0]) {
		// Equality against nil is a nullity check.
		return &Null[E]{Attr: attr, Negated: op == OpNotEqual}, nil
	}
	val, err := literal(op, "value", attr, operands[0])
	if err != nil {
		return nil, err
	}
	if op == OpEqualOrLike {
		return &Or[E]{Predicates: []Predicate[E]{
			&Comparison[E]{Attr: attr, Op: OpEqual, Value: val},
			&Comparison[E]{Attr: attr, Op: OpLike, Value: val},
		}}, nil
	}
	return &Comparison[E]{Attr: attr, Op: op, Value: val}, nil
}

func newIn[E any](attr metamodel.Attr[E], operands []any) (Predicate[E], error) {
	values := make([]ir.IRValue, 0, len(operands))
	for i, v := range operands {
		if isNilOperand(v) {
			values = append(values, ir.IRNull{})
			continue
		}
		val, err := literal(OpIn, fmt.Sprintf("values[%d]", i), attr, v)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return &In[E]{Attr: attr, Values: values}, nil
}

func operandName(spec opSpec, i int) string {
	if spec.arity == 2 {
		return [...]string{"lower", "upper"}[i]
	}
	return "value"
}

// Equal matches entities whose attr equals value. A nil value matches
// entities where attr is NULL.
func Equal[E any](attr metamodel.Attr[E], value any) (Predicate[E], error) {
	return New(OpEqual, attr, value)
}

// NotEqual matches entities whose attr differs from value. A nil value
// matches entities where attr is not NULL.
func NotEqual[E any](attr metamodel.Attr[E], value any) (Predicate[E], error) {
	return New(OpNotEqual, attr, value)
}

// Like matches attr against a LIKE pattern. The wildcards % and _ are
// passed through unchanged.
func Like[E any](attr *metamodel.Attribute[E, string], pattern string) (Predicate[E], error) {
	return New(OpLike, attrOf(attr), pattern)
}

// NotLike is the negation of Like for non-NULL values.
func NotLike[E any](attr *metamodel.Attribute[E, string], pattern string) (Predicate[E], error) {
	return New(OpNotLike, attrOf(attr), pattern)
}

// EqualToOrLike matches attr equal to value or matching value as a pattern.
func EqualToOrLike[E any](attr *metamodel.Attribute[E, string], value string) (Predicate[E], error) {
	return New(OpEqualOrLike, attrOf(attr), value)
}

// IsNull matches entities where attr is NULL.
func IsNull[E any](attr metamodel.Attr[E]) (Predicate[E], error) {
	return New(OpIsNull, attr)
}

// IsNotNull matches entities where attr is not NULL.
func IsNotNull[E any](attr metamodel.Attr[E]) (Predicate[E], error) {
	return New(OpIsNotNull, attr)
}

// IsTrue matches entities where attr is true.
func IsTrue[E any](attr *metamodel.Attribute[E, bool]) (Predicate[E], error) {
	return New(OpIsTrue, attrOf(attr))
}

// IsFalse matches entities where attr is false.
func IsFalse[E any](attr *metamodel.Attribute[E, bool]) (Predicate[E], error) {
	return New(OpIsFalse, attrOf(attr))
}

// GreaterThan matches attr > value.
func GreaterThan[E any, V cmp.Ordered](attr *metamodel.Attribute[E, V], value V) (Predicate[E], error) {
	return New(OpGreaterThan, attrOf(attr), value)
}

// GreaterThanOrEqualTo matches attr >= value.
func GreaterThanOrEqualTo[E any, V cmp.Ordered](attr *metamodel.Attribute[E, V], value V) (Predicate[E], error) {
	return New(OpGreaterOrEqual, attrOf(attr), value)
}

// LessThan matches attr < value.
func LessThan[E any, V cmp.Ordered](attr *metamodel.Attribute[E, V], value V) (Predicate[E], error) {
	return New(OpLessThan, attrOf(attr), value)
}

// LessThanOrEqualTo matches attr <= value.
func LessThanOrEqualTo[E any, V cmp.Ordered](attr *metamodel.Attribute[E, V], value V) (Predicate[E], error) {
	return New(OpLessOrEqual, attrOf(attr), value)
}

// Between matches lower <= attr <= upper.
func Between[E any, V cmp.Ordered](attr *metamodel.Attribute[E, V], lower, upper V) (Predicate[E], error) {
	return New(OpBetween, attrOf(attr), lower, upper)
}

// In matches attr equal to any of values. With no values it matches nothing.
func In[E any](attr metamodel.Attr[E], values ...any) (Predicate[E], error) {
	return newInChecked(attr, values)
}

// InSlice is In over a typed collection. A nil or empty slice matches
// nothing.
func InSlice[E any, V any](attr *metamodel.Attribute[E, V], values []V) (Predicate[E], error) {
	operands := make([]any, len(values))
	for i, v := range values {
		operands[i] = v
	}
	return newInChecked(attrOf(attr), operands)
}

// InCollection is In over a slice or array held as any, for callers that
// only hold an Attr[E]. A nil collection matches nothing; a value that is
// not a collection is rejected.
func InCollection[E any](attr metamodel.Attr[E], values any) (Predicate[E], error) {
	if isNilOperand(values) {
		return newInChecked(attr, nil)
	}
	elems, ok := spread(values)
	if !ok {
		return nil, invalid(OpIn, "values", "must be a slice or array, got %T", values)
	}
	return newInChecked(attr, elems)
}

// newInChecked is New(OpIn, ...) without slice expansion: the operands are
// already the members.
func newInChecked[E any](attr metamodel.Attr[E], operands []any) (Predicate[E], error) {
	if metamodel.IsNil(attr) {
		return nil, invalid(OpIn, "attr", "must not be nil")
	}
	return newIn(attr, operands)
}

// FetchOf builds a fetch hint for target.
func FetchOf[E any](target metamodel.Fetchable[E]) (Predicate[E], error) {
	if metamodel.IsNil(target) {
		return nil, invalid(opFetch, "attr", "must not be nil")
	}
	return &Fetch[E]{Target: target}, nil
}

// AllOf is the conjunction of ps. It needs at least one predicate and
// rejects nil members.
func AllOf[E any](ps ...Predicate[E]) (Predicate[E], error) {
	if err := checkMembers(opAnd, ps); err != nil {
		return nil, err
	}
	return &And[E]{Predicates: ps}, nil
}

// AnyOf is the disjunction of ps. It needs at least one predicate and
// rejects nil members.
func AnyOf[E any](ps ...Predicate[E]) (Predicate[E], error) {
	if err := checkMembers(opOr, ps); err != nil {
		return nil, err
	}
	return &Or[E]{Predicates: ps}, nil
}

// Composition pseudo-operators, used in error reports.
const (
	opAnd   Op = "and"
	opOr    Op = "or"
	opFetch Op = "fetch"
)

func checkMembers[E any](op Op, ps []Predicate[E]) error {
	if len(ps) == 0 {
		return invalid(op, "predicates", "must not be empty")
	}
	for i, p := range ps {
		if IsNilPredicate(p) {
			return invalid(op, fmt.Sprintf("predicates[%d]", i), "must not be nil")
		}
	}
	return nil
}

// IsNilPredicate reports whether p is nil or a nil node pointer.
func IsNilPredicate[E any](p Predicate[E]) bool {
	return metamodel.IsNil(p)
}

// attrOf converts a typed handle to Attr, keeping a nil handle nil.
func attrOf[E any, V any](attr *metamodel.Attribute[E, V]) metamodel.Attr[E] {
	if attr == nil {
		return nil
	}
	return attr
}
