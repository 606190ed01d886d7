// Package engine implements an in-memory query engine for predicates.
//
// The engine evaluates a composite predicate against Go values held in
// memory. It follows the semantics of the SQLite engine in package store,
// so both engines return the same match set for the same predicate and
// data:
//
//   - NULL never satisfies a comparison, range or membership test; only
//     Null nodes match NULL.
//   - Text compares bytewise (SQLite BINARY collation).
//   - LIKE is case-insensitive for ASCII letters only; % matches any run of
//     characters and _ matches exactly one.
//   - Numbers compare by value across integer and float; booleans compare
//     as 0 and 1; every number sorts before every string.
//   - Fetch hints are neutral: they never change the match set.
//
// Evaluation is synchronous and allocation-light. The engine holds no
// state; Filter and Evaluate are safe for concurrent use as long as the
// entities are not mutated concurrently.
package engine
