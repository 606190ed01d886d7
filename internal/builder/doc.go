// Package builder provides the Predicate Builder: a fluent accumulator that
// folds predicates over one entity type into a single composite predicate.
//
// A Builder starts Empty. The first predicate folded in becomes the state;
// every later predicate is combined with the state, conjunctively for
// Where, And, With and the Is* helpers, disjunctively for Or:
//
//	spec, err := builder.From(testutil.Orders).
//		IsEqualTo(testutil.OrderStatus, "PAID").
//		IsBetween(testutil.OrderTotal, 10, 100).
//		With(testutil.OrderItems).
//		ToSpecification()
//
// Folding is left-nested and never flattens: P, Q, R folded with And gives
// And{And{P, Q}, R}.
//
// A rejected call (nil predicate, nil attribute, bad operand) leaves the
// state untouched and records an error matching predicate.ErrInvalidArgument.
// Later calls still apply. ToSpecification returns the state together with
// every recorded error joined.
//
// A Builder is not safe for concurrent use.
package builder
