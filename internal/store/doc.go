// Package store provides a SQLite-backed query engine for predicates.
//
// Find compiles a predicate with package querysql, runs it and returns the
// matching rows as ir.IRObject records, then performs one extra query per
// fetch hint to eager-load associations.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - Every query includes ORDER BY <key> ASC COLLATE BINARY
//   - Eager loads order by the match column, then the target key
//
// Parameterized Values
//   - Literal values are always bound with ? placeholders
//   - Table and column names are validated identifiers, never quoted input
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema setup goes through Migrate, which tracks applied steps in
// PRAGMA user_version.
package store
