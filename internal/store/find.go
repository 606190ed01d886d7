package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/predicate"
	"github.com/roach88/specq/internal/querysql"
)

// Find returns the rows of entity matching p, ordered by key.
//
// Each fetch hint in p is loaded with one extra query and attached to every
// returned row under the association name: a to-many association as an
// IRArray of rows (empty when there are none), a to-one association as the
// target row or IRNull.
//
// Returns an empty slice (not nil) if nothing matches.
func Find[E any](ctx context.Context, s *Store, entity *metamodel.Entity[E], p predicate.Predicate[E]) ([]ir.IRObject, error) {
	compiler := querysql.NewSQLCompiler(entity)

	query, params, err := compiler.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	plans, err := compiler.Plan(p)
	if err != nil {
		return nil, fmt.Errorf("plan fetches: %w", err)
	}

	rows, err := s.Select(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	for _, plan := range plans {
		if err := s.fetch(ctx, plan, rows); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", plan.Association.Name, err)
		}
	}
	return rows, nil
}

// fetch loads plan's rows for owners and attaches them.
func (s *Store) fetch(ctx context.Context, plan querysql.FetchPlan, owners []ir.IRObject) error {
	var keys []any
	seen := make(map[string]bool)
	for _, owner := range owners {
		v, ok := owner[plan.KeyColumn]
		if !ok {
			return fmt.Errorf("owner row has no column %q", plan.KeyColumn)
		}
		if _, null := v.(ir.IRNull); null {
			continue
		}
		k := groupKey(v)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, ir.ToGo(v))
		}
	}

	query, params := querysql.CompileFetch(plan, keys)
	targets, err := s.Select(ctx, query, params...)
	if err != nil {
		return err
	}

	groups := make(map[string][]ir.IRObject)
	for _, target := range targets {
		k := groupKey(target[plan.MatchColumn])
		groups[k] = append(groups[k], target)
	}

	name := plan.Association.Name
	for _, owner := range owners {
		matched := groups[groupKey(owner[plan.KeyColumn])]
		if _, null := owner[plan.KeyColumn].(ir.IRNull); null {
			matched = nil
		}

		if plan.Association.Plural {
			arr := make(ir.IRArray, len(matched))
			for i, m := range matched {
				arr[i] = m
			}
			owner[name] = arr
			continue
		}
		if len(matched) == 0 {
			owner[name] = ir.IRNull{}
		} else {
			owner[name] = matched[0]
		}
	}
	return nil
}

// groupKey identifies a key value across rows. Integer keys read from
// different tables compare equal.
func groupKey(v ir.IRValue) string {
	b, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%T:%v", v, v)
	}
	return string(b)
}

// Select runs a query and scans every row into an IRObject keyed by column
// name. Returns an empty slice (not nil) if there are no rows.
func (s *Store) Select(ctx context.Context, query string, args ...any) ([]ir.IRObject, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []ir.IRObject{}
	}
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]ir.IRObject, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var records []ir.IRObject
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		record := make(ir.IRObject, len(columns))
		for i, column := range columns {
			v, err := sqlToIRValue(values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", column, err)
			}
			record[column] = v
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// sqlToIRValue converts a value scanned by database/sql into an IRValue.
func sqlToIRValue(v any) (ir.IRValue, error) {
	switch val := v.(type) {
	case nil:
		return ir.IRNull{}, nil
	case int64:
		return ir.IRInt(val), nil
	case float64:
		return ir.FromGo(val)
	case bool:
		return ir.IRBool(val), nil
	case string:
		return ir.IRString(val), nil
	case []byte:
		return ir.IRString(string(val)), nil
	case time.Time:
		return ir.IRString(val.UTC().Format(ir.TimeLayout)), nil
	default:
		return nil, fmt.Errorf("unsupported SQL value type: %T", v)
	}
}
