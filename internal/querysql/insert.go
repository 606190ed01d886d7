package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/specq/internal/ir"
)

// CompileInsert converts a row to a parameterized INSERT into table.
// Columns are emitted in RFC 8785 key order so the same row always yields
// the same statement.
func CompileInsert(table string, row ir.IRObject) (string, []any, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	if len(row) == 0 {
		return "", nil, fmt.Errorf("insert into %s: row has no columns", table)
	}

	columns := row.SortedKeys()
	params := make([]any, len(columns))
	for i, column := range columns {
		if err := checkIdent("column", column); err != nil {
			return "", nil, err
		}
		param, err := irValueToParam(row[column])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", column, err)
		}
		params[i] = param
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		placeholders(len(columns)))
	return sql, params, nil
}
