package predicate

import (
	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
)

// Predicate is a condition over entities of type E.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in engines. Node types implement it with value
// receivers, so both T and *T are predicates; the factory returns pointers.
type Predicate[E any] interface {
	predicateNode(*E) // Marker method - seals interface to this package
}

// Comparison compares an attribute against one literal value.
//
// Semantics:
//
//	<attr> <op> <value>
//
// Op is one of OpEqual, OpNotEqual, OpLike, OpNotLike, OpGreaterThan,
// OpGreaterOrEqual, OpLessThan, OpLessOrEqual. Value is never IRNull:
// equality against nil is represented as a Null node.
//
// A NULL attribute value never satisfies a Comparison, for any Op.
type Comparison[E any] struct {
	Attr  metamodel.Attr[E]
	Op    Op
	Value ir.IRValue
}

func (Comparison[E]) predicateNode(*E) {}

// Between is an inclusive range check.
//
// Semantics:
//
//	<lower> <= <attr> AND <attr> <= <upper>
type Between[E any] struct {
	Attr  metamodel.Attr[E]
	Lower ir.IRValue
	Upper ir.IRValue
}

func (Between[E]) predicateNode(*E) {}

// In is a membership test.
//
// Semantics:
//
//	<attr> IN (<values>...)
//
// An empty Values slice matches nothing. IRNull members are kept but never
// match, as in SQL.
type In[E any] struct {
	Attr   metamodel.Attr[E]
	Values []ir.IRValue
}

func (In[E]) predicateNode(*E) {}

// Null is a nullity check.
//
// Semantics:
//
//	<attr> IS NULL        (Negated = false)
//	<attr> IS NOT NULL    (Negated = true)
type Null[E any] struct {
	Attr    metamodel.Attr[E]
	Negated bool
}

func (Null[E]) predicateNode(*E) {}

// And is a conjunction. Fetch children are ignored; an And with no
// restricting child restricts nothing.
type And[E any] struct {
	Predicates []Predicate[E]
}

func (And[E]) predicateNode(*E) {}

// Or is a disjunction. Fetch children are ignored; an Or with no
// restricting child restricts nothing.
type Or[E any] struct {
	Predicates []Predicate[E]
}

func (Or[E]) predicateNode(*E) {}

// Fetch asks the engine to eagerly load Target with every matched entity.
// It never changes which entities match.
type Fetch[E any] struct {
	Target metamodel.Fetchable[E]
}

func (Fetch[E]) predicateNode(*E) {}
