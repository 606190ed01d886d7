// Package compiler turns CUE entity models into run-time metamodel handles
// and YAML filter steps into predicates over them.
package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/specq/internal/metamodel"
)

// Attribute value types accepted in a model.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
)

// Model is a set of entity declarations loaded from CUE.
type Model struct {
	Entities []EntitySpec
}

// Entity returns the entity called name.
func (m *Model) Entity(name string) (*EntitySpec, bool) {
	for i := range m.Entities {
		if m.Entities[i].Name == name {
			return &m.Entities[i], true
		}
	}
	return nil, false
}

// Table returns the entity stored in table.
func (m *Model) Table(table string) (*EntitySpec, bool) {
	for i := range m.Entities {
		if m.Entities[i].Table == table {
			return &m.Entities[i], true
		}
	}
	return nil, false
}

// EntitySpec declares one entity: its table, key and attributes.
type EntitySpec struct {
	Name         string
	Table        string
	Key          string
	Attributes   []AttributeSpec
	Associations []AssociationSpec
	Pos          token.Pos `json:"-"`
}

// Attribute returns the attribute called name.
func (e *EntitySpec) Attribute(name string) (*AttributeSpec, bool) {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i], true
		}
	}
	return nil, false
}

// Association returns the association called name.
func (e *EntitySpec) Association(name string) (*AssociationSpec, bool) {
	for i := range e.Associations {
		if e.Associations[i].Name == name {
			return &e.Associations[i], true
		}
	}
	return nil, false
}

// KeyType returns the type of the key column. An undeclared key is int.
func (e *EntitySpec) KeyType() string {
	if a, ok := e.Attribute(e.Key); ok {
		return a.Type
	}
	return TypeInt
}

// HasColumn reports whether column is stored in the entity's table.
func (e *EntitySpec) HasColumn(column string) bool {
	if column == e.Key {
		return true
	}
	for _, a := range e.Attributes {
		if a.Name == column {
			return true
		}
	}
	for _, a := range e.Associations {
		if !a.Plural && a.Column == column {
			return true
		}
	}
	return false
}

// AttributeSpec declares a stored attribute.
type AttributeSpec struct {
	Name     string
	Type     string
	Nullable bool
}

// AssociationSpec declares an association to another table.
//
// To-one: Column holds the key of a Target row.
// To-many (Plural): Target.MappedBy holds the owner's key.
type AssociationSpec struct {
	Name     string
	Target   string
	Column   string
	MappedBy string
	Plural   bool
}

// CompileModel parses every entity under the "entity" field of v.
// Entities keep their declaration order.
func CompileModel(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	model := &Model{}
	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &CompileError{
			Field:   "entity",
			Message: "no entities declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		spec, err := CompileEntity(iter.Value())
		if err != nil {
			return nil, err
		}
		model.Entities = append(model.Entities, *spec)
	}
	return model, nil
}

// CompileEntity parses a CUE value into an EntitySpec.
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Order: { attributes: { status: string } }`)
//	spec, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Order")))
func CompileEntity(v cue.Value) (*EntitySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &EntitySpec{Pos: v.Pos()}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if spec.Table, err = optionalString(v, "table", strings.ToLower(spec.Name)); err != nil {
		return nil, err
	}
	if spec.Key, err = optionalString(v, "key", metamodel.DefaultKey); err != nil {
		return nil, err
	}

	if spec.Attributes, err = parseAttributes(v); err != nil {
		return nil, err
	}
	if spec.Associations, err = parseAssociations(v); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseAttributes(v cue.Value) ([]AttributeSpec, error) {
	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return nil, nil
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var attrs []AttributeSpec
	for iter.Next() {
		typeName, nullable, err := extractTypeName(iter.Value())
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, AttributeSpec{
			Name:     iter.Label(),
			Type:     typeName,
			Nullable: nullable,
		})
	}
	return attrs, nil
}

func parseAssociations(v cue.Value) ([]AssociationSpec, error) {
	assocsVal := v.LookupPath(cue.ParsePath("associations"))
	if !assocsVal.Exists() {
		return nil, nil
	}

	iter, err := assocsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var assocs []AssociationSpec
	for iter.Next() {
		av := iter.Value()
		assoc := AssociationSpec{Name: iter.Label()}

		targetVal := av.LookupPath(cue.ParsePath("target"))
		if !targetVal.Exists() {
			return nil, &CompileError{
				Field:   "target",
				Message: fmt.Sprintf("association %s: target is required", assoc.Name),
				Pos:     av.Pos(),
			}
		}
		if assoc.Target, err = targetVal.String(); err != nil {
			return nil, formatCUEError(err)
		}
		if assoc.Column, err = optionalString(av, "column", ""); err != nil {
			return nil, err
		}
		if assoc.MappedBy, err = optionalString(av, "mapped_by", ""); err != nil {
			return nil, err
		}

		if pluralVal := av.LookupPath(cue.ParsePath("plural")); pluralVal.Exists() {
			if assoc.Plural, err = pluralVal.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		assocs = append(assocs, assoc)
	}
	return assocs, nil
}

// optionalString reads a string field, returning def when it is absent.
func optionalString(v cue.Value, field, def string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// extractTypeName converts a CUE type to a model type name. A disjunction
// with null (string | null) marks the attribute nullable.
func extractTypeName(v cue.Value) (string, bool, error) {
	kind := v.IncompleteKind()
	nullable := kind&cue.NullKind != 0 && kind != cue.NullKind
	kind &^= cue.NullKind

	switch kind {
	case cue.StringKind:
		return TypeString, nullable, nil
	case cue.IntKind:
		return TypeInt, nullable, nil
	case cue.FloatKind, cue.NumberKind:
		return TypeFloat, nullable, nil
	case cue.BoolKind:
		return TypeBool, nullable, nil
	default:
		return "", false, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
