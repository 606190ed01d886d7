// Package predicate provides the Predicate Factory and the predicate tree it
// builds.
//
// A predicate is a condition over an entity type E, expressed against the
// attribute handles of package metamodel. Predicates are immutable values
// that a query engine translates or evaluates; this package never executes
// them.
//
// PREDICATE TREE:
//
// Predicate is a sealed interface. Only the node types in this package
// implement it:
//
//	Comparison   attr <op> value        (equal, not_equal, like, not_like, gt, ge, lt, le)
//	Between      lower <= attr <= upper (inclusive at both ends)
//	In           attr IN (values...)    (empty set matches nothing)
//	Null         attr IS [NOT] NULL
//	And / Or     boolean composition (closed algebra)
//	Fetch        eager-load hint for an association
//
// Literal operands are stored as ir.IRValue after conversion to the
// attribute's value type, so every engine sees the same values and every
// tree has a canonical encoding (see Canonical and Fingerprint).
//
// FETCH HINTS:
//
// A Fetch node never restricts the match set. It is neutral inside both And
// and Or: And{P, Fetch} and Or{P, Fetch} match exactly what P matches.
// Engines collect hints with Fetches and load the named associations.
//
// CONSTRUCTION:
//
// The typed functions (Equal, Like, GreaterThan, Between, In, ...) check
// operand types at compile time where Go generics allow it. All of them
// delegate to New, which performs the same checks at run time for callers
// holding only a metamodel.Attr[E]. Invalid input yields an *ArgumentError
// matching ErrInvalidArgument.
//
// Example:
//
//	paid, err := predicate.Equal(testutil.OrderStatus, "PAID")
//	inRange, err := predicate.Between(testutil.OrderTotal, 10, 100)
//	p, err := predicate.And(paid, inRange)
package predicate
