package predicate

import (
	"fmt"
	"math"
	"reflect"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
)

// literal converts operand v to the value type of attr and encodes it.
// v must be non-nil; callers handle nil according to the operator.
func literal[E any](op Op, arg string, attr metamodel.Attr[E], v any) (ir.IRValue, error) {
	converted, err := convert(v, attr.ValueType())
	if err != nil {
		return nil, invalid(op, arg, "%v for %s", err, describe(attr))
	}
	val, err := ir.FromGo(converted)
	if err != nil {
		return nil, invalid(op, arg, "%v", err)
	}
	return val, nil
}

// convert returns v as a value of type t.
//
// Assignable values pass through. Values of the same basic kind family are
// converted: strings to named string types, bools to named bools, and any
// numeric value to any numeric type provided the conversion is exact, so
// untyped constants like 10 fit an int64 or float64 attribute.
func convert(v any, t reflect.Type) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil pointer")
		}
		rv = rv.Elem()
	}
	if t == nil || t.Kind() == reflect.Interface {
		return rv.Interface(), nil
	}
	if rv.Type().AssignableTo(t) {
		return rv.Interface(), nil
	}

	from, to := metamodel.KindOf(rv.Type()), metamodel.KindOf(t)
	switch {
	case from.Numeric() && to.Numeric():
		return convertNumber(rv, t)
	case from == metamodel.KindString && to == metamodel.KindString,
		from == metamodel.KindBool && to == metamodel.KindBool:
		return rv.Convert(t).Interface(), nil
	}
	return nil, fmt.Errorf("cannot use %s value", rv.Type())
}

func convertNumber(rv reflect.Value, t reflect.Type) (any, error) {
	out := reflect.New(t).Elem()
	switch metamodel.KindOf(t) {
	case metamodel.KindInt:
		i, ok := asInt(rv)
		if !ok || out.OverflowInt(i) {
			return nil, fmt.Errorf("%v does not fit %s", rv.Interface(), t)
		}
		out.SetInt(i)
	case metamodel.KindUint:
		i, ok := asInt(rv)
		if !ok || i < 0 || out.OverflowUint(uint64(i)) {
			return nil, fmt.Errorf("%v does not fit %s", rv.Interface(), t)
		}
		out.SetUint(uint64(i))
	case metamodel.KindFloat:
		f := asFloat(rv)
		if out.OverflowFloat(f) {
			return nil, fmt.Errorf("%v does not fit %s", rv.Interface(), t)
		}
		out.SetFloat(f)
	}
	return out.Interface(), nil
}

// asInt reads rv as an int64. ok is false for fractional or out-of-range
// values.
func asInt(rv reflect.Value) (int64, bool) {
	switch metamodel.KindOf(rv.Type()) {
	case metamodel.KindInt:
		return rv.Int(), true
	case metamodel.KindUint:
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	case metamodel.KindFloat:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func asFloat(rv reflect.Value) float64 {
	switch metamodel.KindOf(rv.Type()) {
	case metamodel.KindInt:
		return float64(rv.Int())
	case metamodel.KindUint:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}

// isNilOperand reports whether v is nil or a nil pointer.
func isNilOperand(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// spread expands a slice or array operand into its elements. ok is false
// when v is not a collection. A nil slice spreads to no elements.
func spread(v any) (elems []any, ok bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false // []byte is a scalar
	}
	elems = make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}

func describe[E any](attr metamodel.Attr[E]) string {
	name := attr.Name()
	if owner := attr.Owner(); owner != "" {
		name = owner + "." + name
	}
	if t := attr.ValueType(); t != nil {
		return fmt.Sprintf("%s (%s)", name, t)
	}
	return name
}
