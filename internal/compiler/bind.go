package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
)

// Row is an entity loaded at run time: one IRObject per table row, keyed by
// column name.
type Row = ir.IRObject

// Binding is an EntitySpec turned into metamodel handles over Row. Every
// attribute, the key and every to-one association column is addressable by
// name; plural associations are addressable as fetch targets only.
type Binding struct {
	Spec   *EntitySpec
	Entity *metamodel.Entity[Row]

	attrs   map[string]metamodel.Attr[Row]
	fetches map[string]metamodel.Fetchable[Row]
}

// Bind creates handles for the entity called name. The model should have
// passed Validate.
func Bind(model *Model, name string) (*Binding, error) {
	spec, ok := model.Entity(name)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", name)
	}

	entity := metamodel.NewEntity[Row](spec.Name,
		metamodel.WithTable(spec.Table),
		metamodel.WithKey(spec.Key))

	b := &Binding{
		Spec:    spec,
		Entity:  entity,
		attrs:   make(map[string]metamodel.Attr[Row]),
		fetches: make(map[string]metamodel.Fetchable[Row]),
	}

	columns := spec.Attributes
	if _, declared := spec.Attribute(spec.Key); !declared {
		columns = append([]AttributeSpec{{Name: spec.Key, Type: TypeInt}}, columns...)
	}
	for _, attr := range columns {
		handle := bindColumn(entity, attr.Name, attr.Name, attr.Type, attr.Nullable)
		b.attrs[attr.Name] = handle
		b.fetches[attr.Name] = handle.(metamodel.Fetchable[Row])
	}

	for _, assoc := range spec.Associations {
		if assoc.Plural {
			b.fetches[assoc.Name] = metamodel.NewPlural(entity, assoc.Name, assoc.Target, assoc.MappedBy,
				func(r *Row) []Row { return nested(*r, assoc.Name) })
			continue
		}

		target, ok := model.Table(assoc.Target)
		if !ok {
			return nil, fmt.Errorf("association %s: unknown target table %q", assoc.Name, assoc.Target)
		}
		handle := bindColumn(entity, assoc.Name, assoc.Column, target.KeyType(), true,
			metamodel.References(target.Table, target.Key))
		b.attrs[assoc.Name] = handle
		b.fetches[assoc.Name] = handle.(metamodel.Fetchable[Row])
	}

	return b, nil
}

// Attr returns the singular attribute called name.
func (b *Binding) Attr(name string) (metamodel.Attr[Row], bool) {
	a, ok := b.attrs[name]
	return a, ok
}

// Fetchable returns the fetch target called name.
func (b *Binding) Fetchable(name string) (metamodel.Fetchable[Row], bool) {
	f, ok := b.fetches[name]
	return f, ok
}

// Key returns the key of row, or false when it has none.
func (b *Binding) Key(row Row) (int64, bool) {
	switch v := row[b.Spec.Key].(type) {
	case ir.IRInt:
		return int64(v), true
	case ir.IRFloat:
		if f := float64(v); f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

func bindColumn(entity *metamodel.Entity[Row], name, column, typeName string, nullable bool, opts ...metamodel.AttributeOption) metamodel.Attr[Row] {
	opts = append(opts, metamodel.WithColumn(column))

	switch typeName {
	case TypeString:
		return newColumn(entity, name, nullable, func(r *Row) (string, bool) {
			s, ok := (*r)[column].(ir.IRString)
			return string(s), ok
		}, opts)
	case TypeFloat:
		return newColumn(entity, name, nullable, func(r *Row) (float64, bool) {
			switch v := (*r)[column].(type) {
			case ir.IRFloat:
				return float64(v), true
			case ir.IRInt:
				return float64(v), true
			}
			return 0, false
		}, opts)
	case TypeBool:
		return newColumn(entity, name, nullable, func(r *Row) (bool, bool) {
			switch v := (*r)[column].(type) {
			case ir.IRBool:
				return bool(v), true
			case ir.IRInt:
				// SQLite stores booleans as 0 and 1
				return v != 0, true
			}
			return false, false
		}, opts)
	default:
		return newColumn(entity, name, nullable, func(r *Row) (int64, bool) {
			switch v := (*r)[column].(type) {
			case ir.IRInt:
				return int64(v), true
			case ir.IRFloat:
				if f := float64(v); f == math.Trunc(f) {
					return int64(f), true
				}
			}
			return 0, false
		}, opts)
	}
}

// newColumn reads a column through get. Non-nullable columns are always
// present in rows that passed CompileRow or came from a NOT NULL column.
func newColumn[V any](entity *metamodel.Entity[Row], name string, nullable bool, get func(*Row) (V, bool), opts []metamodel.AttributeOption) metamodel.Attr[Row] {
	if nullable {
		return metamodel.NewNullable(entity, name, get, opts...)
	}
	return metamodel.NewAttribute(entity, name, func(r *Row) V {
		v, _ := get(r)
		return v
	}, opts...)
}

// nested reads the rows attached to r under name by an eager load.
func nested(r Row, name string) []Row {
	arr, ok := r[name].(ir.IRArray)
	if !ok {
		return nil
	}
	out := make([]Row, 0, len(arr))
	for _, v := range arr {
		if obj, ok := v.(ir.IRObject); ok {
			out = append(out, obj)
		}
	}
	return out
}
