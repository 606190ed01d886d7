// Package metamodel provides the typed attribute handles predicates are
// built against.
//
// An Entity[E] names an entity type E together with its table and key
// column. Attribute[E, V] is a singular attribute of E with value type V;
// Plural[E, V] is a to-many association. Handles are produced outside the
// predicate core (hand-written, generated, or compiled from a CUE model)
// and are immutable once built.
//
// The predicate core treats handles as opaque keys. Query engines use the
// remaining surface (Column, Extract, Association) to translate or evaluate
// predicates.
package metamodel
