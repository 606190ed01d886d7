package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/predicate"
)

// SQLCompiler compiles predicates over E to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY on the key for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler[E any] struct {
	entity *metamodel.Entity[E]
}

// NewSQLCompiler creates a compiler for queries over entity.
func NewSQLCompiler[E any](entity *metamodel.Entity[E]) *SQLCompiler[E] {
	return &SQLCompiler[E]{entity: entity}
}

// identifier matches the table and column names the compiler accepts.
// Identifiers are never quoted, so anything else is rejected.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(kind, name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// Compile converts a predicate to a parameterized SELECT over the entity's
// table. Returns (sql, params, error) tuple. A nil predicate selects every
// row; fetch hints do not contribute to the WHERE clause.
//
// MANDATORY: Every query includes ORDER BY key with COLLATE BINARY.
// MANDATORY: All values are parameterized (never interpolated).
func (c *SQLCompiler[E]) Compile(p predicate.Predicate[E]) (string, []any, error) {
	if c.entity == nil {
		return "", nil, fmt.Errorf("cannot compile without an entity")
	}
	if err := checkIdent("table", c.entity.Table()); err != nil {
		return "", nil, err
	}
	if err := checkIdent("key", c.entity.Key()); err != nil {
		return "", nil, err
	}

	var whereClause string
	var params []any
	if !predicate.IsNilPredicate(p) {
		filterSQL, filterParams, err := c.compilePredicate(p)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		if filterSQL != "" {
			whereClause = " WHERE " + filterSQL
			params = filterParams
		}
	}

	// MANDATORY: Always add ORDER BY on the key
	orderByClause := " ORDER BY " + stableOrderKey(c.entity.Key())

	sql := fmt.Sprintf("SELECT * FROM %s%s%s",
		c.entity.Table(),
		whereClause,
		orderByClause)

	return sql, params, nil
}

// stableOrderKey returns the ORDER BY term for a key column.
// COLLATE BINARY ensures deterministic text ordering across SQLite versions.
func stableOrderKey(key string) string {
	return key + " ASC COLLATE BINARY"
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// Returns (sql, params, error); sql is empty for nodes that restrict
// nothing (fetch hints and composites made only of them).
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler[E]) compilePredicate(p predicate.Predicate[E]) (string, []any, error) {
	if predicate.IsNilPredicate(p) {
		return "", nil, nil
	}

	switch pred := p.(type) {
	case predicate.Comparison[E]:
		return compileComparison(pred)
	case *predicate.Comparison[E]:
		return compileComparison(*pred)
	case predicate.Between[E]:
		return compileBetween(pred)
	case *predicate.Between[E]:
		return compileBetween(*pred)
	case predicate.In[E]:
		return compileIn(pred)
	case *predicate.In[E]:
		return compileIn(*pred)
	case predicate.Null[E]:
		return compileNull(pred)
	case *predicate.Null[E]:
		return compileNull(*pred)
	case predicate.Fetch[E], *predicate.Fetch[E]:
		return "", nil, nil // Load plan only
	case predicate.And[E], *predicate.And[E]:
		return c.compileJunction(" AND ", predicate.Children(p))
	case predicate.Or[E], *predicate.Or[E]:
		return c.compileJunction(" OR ", predicate.Children(p))
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileComparison compiles a Comparison to "column <op> ?".
// CRITICAL: Value is NEVER interpolated - always parameterized.
func compileComparison[E any](cmp predicate.Comparison[E]) (string, []any, error) {
	column, err := columnOf(cmp.Attr)
	if err != nil {
		return "", nil, err
	}
	param, err := irValueToParam(cmp.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	return fmt.Sprintf("%s %s ?", column, predicate.Symbol(cmp.Op)), []any{param}, nil
}

// compileBetween compiles a Between to "column BETWEEN ? AND ?".
func compileBetween[E any](b predicate.Between[E]) (string, []any, error) {
	column, err := columnOf(b.Attr)
	if err != nil {
		return "", nil, err
	}
	lower, err := irValueToParam(b.Lower)
	if err != nil {
		return "", nil, fmt.Errorf("convert lower: %w", err)
	}
	upper, err := irValueToParam(b.Upper)
	if err != nil {
		return "", nil, fmt.Errorf("convert upper: %w", err)
	}

	return column + " BETWEEN ? AND ?", []any{lower, upper}, nil
}

// compileIn compiles an In to "column IN (?, ...)".
// An empty set compiles to the always-false "1 = 0".
func compileIn[E any](in predicate.In[E]) (string, []any, error) {
	column, err := columnOf(in.Attr)
	if err != nil {
		return "", nil, err
	}
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}

	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		param, err := irValueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("convert values[%d]: %w", i, err)
		}
		params[i] = param
	}

	return fmt.Sprintf("%s IN (%s)", column, placeholders(len(params))), params, nil
}

// compileNull compiles a Null to "column IS [NOT] NULL".
func compileNull[E any](n predicate.Null[E]) (string, []any, error) {
	column, err := columnOf(n.Attr)
	if err != nil {
		return "", nil, err
	}
	if n.Negated {
		return column + " IS NOT NULL", nil, nil
	}
	return column + " IS NULL", nil, nil
}

// compileJunction joins the restricting children with sep.
// More than one part is parenthesized.
func (c *SQLCompiler[E]) compileJunction(sep string, children []predicate.Predicate[E]) (string, []any, error) {
	var sqlParts []string
	var allParams []any

	for _, child := range children {
		sql, params, err := c.compilePredicate(child)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	switch len(sqlParts) {
	case 0:
		return "", nil, nil
	case 1:
		return sqlParts[0], allParams, nil
	}
	return "(" + strings.Join(sqlParts, sep) + ")", allParams, nil
}

func columnOf[E any](attr metamodel.Attr[E]) (string, error) {
	if metamodel.IsNil(attr) {
		return "", fmt.Errorf("predicate without attribute")
	}
	column := attr.Column()
	if err := checkIdent("column", column); err != nil {
		return "", err
	}
	return column, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Supports string, int, float, bool and null. Arrays and objects are not
// directly supported as SQL parameters.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRFloat:
		return float64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case nil, ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
