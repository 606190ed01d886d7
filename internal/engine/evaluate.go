package engine

import (
	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/predicate"
)

// verdict is the outcome of evaluating one node. Fetch hints and
// composites of them are neutral: they neither match nor reject.
type verdict int

const (
	rejected verdict = iota
	matched
	neutral
)

// Evaluate reports whether e matches p. A nil predicate matches every
// entity.
func Evaluate[E any](p predicate.Predicate[E], e *E) (bool, error) {
	if predicate.IsNilPredicate(p) {
		return true, nil
	}
	v, err := eval(p, e)
	if err != nil {
		return false, err
	}
	return v != rejected, nil
}

// Filter returns the entities matching p, in input order.
func Filter[E any](p predicate.Predicate[E], entities []E) ([]E, error) {
	out := make([]E, 0, len(entities))
	for i := range entities {
		ok, err := Evaluate(p, &entities[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entities[i])
		}
	}
	return out, nil
}

func eval[E any](p predicate.Predicate[E], e *E) (verdict, error) {
	switch node := p.(type) {
	case predicate.Comparison[E]:
		return evalComparison(node, e)
	case *predicate.Comparison[E]:
		return evalComparison(*node, e)
	case predicate.Between[E]:
		return evalBetween(node, e)
	case *predicate.Between[E]:
		return evalBetween(*node, e)
	case predicate.In[E]:
		return evalIn(node, e)
	case *predicate.In[E]:
		return evalIn(*node, e)
	case predicate.Null[E]:
		return evalNull(node, e)
	case *predicate.Null[E]:
		return evalNull(*node, e)
	case predicate.Fetch[E], *predicate.Fetch[E]:
		return neutral, nil
	case predicate.And[E], *predicate.And[E]:
		return evalAnd(predicate.Children(p), e)
	case predicate.Or[E], *predicate.Or[E]:
		return evalOr(predicate.Children(p), e)
	default:
		return rejected, newUnknownPredicateError(p)
	}
}

func evalAnd[E any](children []predicate.Predicate[E], e *E) (verdict, error) {
	result := neutral
	for _, child := range children {
		if predicate.IsNilPredicate(child) {
			continue
		}
		v, err := eval(child, e)
		if err != nil {
			return rejected, err
		}
		switch v {
		case rejected:
			return rejected, nil
		case matched:
			result = matched
		}
	}
	return result, nil
}

func evalOr[E any](children []predicate.Predicate[E], e *E) (verdict, error) {
	result := neutral
	for _, child := range children {
		if predicate.IsNilPredicate(child) {
			continue
		}
		v, err := eval(child, e)
		if err != nil {
			return rejected, err
		}
		switch v {
		case matched:
			return matched, nil
		case rejected:
			result = rejected
		}
	}
	return result, nil
}

func evalComparison[E any](c predicate.Comparison[E], e *E) (verdict, error) {
	actual, err := read(c.Attr, e)
	if err != nil || isNull(actual) || isNull(c.Value) {
		return rejected, err
	}

	switch c.Op {
	case predicate.OpLike, predicate.OpNotLike:
		text, ok := asText(actual)
		pattern, pok := asText(c.Value)
		if !ok || !pok {
			return rejected, nil
		}
		return verdictOf(Like(text, pattern) == (c.Op == predicate.OpLike)), nil
	}

	order, ok := compare(actual, c.Value)
	if !ok {
		return rejected, nil
	}
	switch c.Op {
	case predicate.OpEqual:
		return verdictOf(order == 0), nil
	case predicate.OpNotEqual:
		return verdictOf(order != 0), nil
	case predicate.OpGreaterThan:
		return verdictOf(order > 0), nil
	case predicate.OpGreaterOrEqual:
		return verdictOf(order >= 0), nil
	case predicate.OpLessThan:
		return verdictOf(order < 0), nil
	case predicate.OpLessOrEqual:
		return verdictOf(order <= 0), nil
	}
	return rejected, newUnknownPredicateError(c)
}

func evalBetween[E any](b predicate.Between[E], e *E) (verdict, error) {
	actual, err := read(b.Attr, e)
	if err != nil || isNull(actual) {
		return rejected, err
	}
	lo, lok := compare(actual, b.Lower)
	hi, hok := compare(actual, b.Upper)
	return verdictOf(lok && hok && lo >= 0 && hi <= 0), nil
}

func evalIn[E any](in predicate.In[E], e *E) (verdict, error) {
	actual, err := read(in.Attr, e)
	if err != nil || isNull(actual) {
		return rejected, err
	}
	for _, v := range in.Values {
		if isNull(v) {
			continue
		}
		if order, ok := compare(actual, v); ok && order == 0 {
			return matched, nil
		}
	}
	return rejected, nil
}

func evalNull[E any](n predicate.Null[E], e *E) (verdict, error) {
	actual, err := read(n.Attr, e)
	if err != nil {
		return rejected, err
	}
	return verdictOf(isNull(actual) != n.Negated), nil
}

// read extracts attr from e as an IRValue.
func read[E any](attr metamodel.Attr[E], e *E) (ir.IRValue, error) {
	if metamodel.IsNil(attr) {
		return ir.IRNull{}, nil
	}
	v, err := ir.FromGo(attr.Extract(e))
	if err != nil {
		return nil, newUnsupportedValueError(predicate.QualifiedName(attr), err)
	}
	return v, nil
}

func verdictOf(ok bool) verdict {
	if ok {
		return matched
	}
	return rejected
}

func isNull(v ir.IRValue) bool {
	switch v.(type) {
	case nil, ir.IRNull:
		return true
	}
	return false
}
