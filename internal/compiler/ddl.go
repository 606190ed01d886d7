package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/specq/internal/ir"
)

// sqlTypes maps model types to SQLite column types. BOOLEAN columns are
// read back as Go bools by the sqlite3 driver.
var sqlTypes = map[string]string{
	TypeString: "TEXT",
	TypeInt:    "INTEGER",
	TypeFloat:  "REAL",
	TypeBool:   "BOOLEAN",
}

// DDL returns one CREATE TABLE statement per entity, in LoadOrder.
// To-one columns reference their target's key unless the reference lies on
// a cycle (see AnalyzeReferences).
func DDL(model *Model) []string {
	stmts := make([]string, 0, len(model.Entities))
	for _, table := range LoadOrder(model) {
		spec, _ := model.Table(table)
		stmts = append(stmts, createTable(model, spec))
	}
	return stmts
}

func createTable(model *Model, spec *EntitySpec) string {
	var cols []string
	cols = append(cols, fmt.Sprintf("%s %s PRIMARY KEY", spec.Key, sqlTypes[spec.KeyType()]))

	for _, attr := range spec.Attributes {
		if attr.Name == spec.Key {
			continue
		}
		col := attr.Name + " " + sqlTypes[attr.Type]
		if !attr.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}

	for _, assoc := range spec.Associations {
		if assoc.Plural || assoc.Column == "" || spec.HasAttributeColumn(assoc.Column) {
			continue
		}
		target, ok := model.Table(assoc.Target)
		if !ok {
			cols = append(cols, assoc.Column+" "+sqlTypes[TypeInt])
			continue
		}
		col := assoc.Column + " " + sqlTypes[target.KeyType()]
		if !cyclicEdge(model, spec.Table, target.Table) {
			col += fmt.Sprintf(" REFERENCES %s(%s)", target.Table, target.Key)
		}
		cols = append(cols, col)
	}

	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", spec.Table, strings.Join(cols, ",\n\t"))
}

// HasAttributeColumn reports whether column is the key or a declared
// attribute.
func (e *EntitySpec) HasAttributeColumn(column string) bool {
	_, ok := e.Attribute(column)
	return ok || column == e.Key
}

// CompileRow converts a fixture row into a Row for spec's table. Every
// column must be stored in the table, values must match the column type and
// non-nullable attributes must be present. Integral values are accepted for
// float columns.
func CompileRow(model *Model, spec *EntitySpec, raw map[string]any) (Row, error) {
	row := make(Row, len(raw))
	for column, value := range raw {
		typeName, nullable, ok := columnType(model, spec, column)
		if !ok {
			return nil, fmt.Errorf("%s: unknown column %q", spec.Table, column)
		}

		v, err := ir.FromGo(value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", spec.Table, column, err)
		}
		if v, err = conform(v, typeName, nullable); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", spec.Table, column, err)
		}
		row[column] = v
	}

	if _, ok := row[spec.Key]; !ok {
		return nil, fmt.Errorf("%s: missing key %q", spec.Table, spec.Key)
	}
	for _, attr := range spec.Attributes {
		if _, ok := row[attr.Name]; !ok {
			if !attr.Nullable {
				return nil, fmt.Errorf("%s: missing non-nullable column %q", spec.Table, attr.Name)
			}
			row[attr.Name] = ir.IRNull{}
		}
	}
	return row, nil
}

func columnType(model *Model, spec *EntitySpec, column string) (typeName string, nullable bool, ok bool) {
	if attr, found := spec.Attribute(column); found {
		return attr.Type, attr.Nullable, true
	}
	if column == spec.Key {
		return TypeInt, false, true
	}
	for _, assoc := range spec.Associations {
		if !assoc.Plural && assoc.Column == column {
			if target, found := model.Table(assoc.Target); found {
				return target.KeyType(), true, true
			}
			return TypeInt, true, true
		}
	}
	return "", false, false
}

func conform(v ir.IRValue, typeName string, nullable bool) (ir.IRValue, error) {
	if _, null := v.(ir.IRNull); null {
		if !nullable {
			return nil, fmt.Errorf("null in non-nullable column")
		}
		return v, nil
	}

	switch typeName {
	case TypeString:
		if _, ok := v.(ir.IRString); ok {
			return v, nil
		}
	case TypeInt:
		if _, ok := v.(ir.IRInt); ok {
			return v, nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case ir.IRFloat:
			return n, nil
		case ir.IRInt:
			return ir.IRFloat(n), nil
		}
	case TypeBool:
		if _, ok := v.(ir.IRBool); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("want %s, got %T", typeName, v)
}
