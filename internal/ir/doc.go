// Package ir provides the value model shared by the specq collaborators.
//
// Operands inside predicates, rows read from a store and dynamic entities
// built from CUE models are all expressed as IRValues. The package also
// provides the RFC 8785 canonical JSON encoding used for predicate
// fingerprints and golden files.
//
// ir imports nothing internal. Every other package may import it.
package ir
