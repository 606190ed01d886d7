package metamodel

import "reflect"

// Attr is the view of a singular attribute that does not depend on its
// value type. Predicates hold attributes through this interface.
//
// This is a sealed interface - only Attribute implements it.
type Attr[E any] interface {
	// Name is the logical attribute name.
	Name() string
	// Column is the storage column (defaults to Name).
	Column() string
	// Owner is the name of the entity the attribute belongs to.
	Owner() string
	// ValueType is the declared value type V.
	ValueType() reflect.Type
	// Kind classifies ValueType.
	Kind() Kind
	// Nullable reports whether the attribute may hold no value.
	Nullable() bool
	// Extract reads the attribute from an entity. nil means NULL.
	Extract(e *E) any

	attribute(*E)
}

// Fetchable is an attribute a fetch hint may name: a singular attribute or
// a plural association.
//
// This is a sealed interface - only Attribute and Plural implement it.
type Fetchable[E any] interface {
	Name() string
	Owner() string
	// Association describes how to load the associated rows. ok is false
	// for plain (non-association) singular attributes.
	Association() (assoc Association, ok bool)

	fetchable(*E)
}

// Association describes how an associated entity is reached from its owner.
//
// To-one: owner.LocalColumn references Target.TargetKey.
// To-many: Target.MappedBy references owner key.
type Association struct {
	Name        string
	Target      string // target table
	TargetKey   string // to-one only
	LocalColumn string // to-one only
	MappedBy    string // to-many only
	Plural      bool
}

// Attribute is a singular attribute of entity E with value type V.
type Attribute[E any, V any] struct {
	owner    string
	name     string
	column   string
	nullable bool
	join     *Association
	get      func(*E) (V, bool)
	typ      reflect.Type
	kind     Kind
}

// AttributeOption configures an Attribute.
type AttributeOption func(*attributeConfig)

type attributeConfig struct {
	column    string
	target    string
	targetKey string
}

// WithColumn sets the storage column. Default: the attribute name.
func WithColumn(column string) AttributeOption {
	return func(c *attributeConfig) {
		c.column = column
	}
}

// References marks the attribute as a to-one association: its column holds
// the key of a row in target. key defaults to DefaultKey when empty.
func References(target, key string) AttributeOption {
	return func(c *attributeConfig) {
		c.target = target
		c.targetKey = key
	}
}

// NewAttribute creates a non-nullable attribute read by get.
func NewAttribute[E any, V any](entity *Entity[E], name string, get func(*E) V, opts ...AttributeOption) *Attribute[E, V] {
	var read func(*E) (V, bool)
	if get != nil {
		read = func(e *E) (V, bool) { return get(e), true }
	}
	return newAttribute(entity, name, read, false, opts)
}

// NewNullable creates a nullable attribute. get reports ok=false for NULL.
func NewNullable[E any, V any](entity *Entity[E], name string, get func(*E) (V, bool), opts ...AttributeOption) *Attribute[E, V] {
	return newAttribute(entity, name, get, true, opts)
}

func newAttribute[E any, V any](entity *Entity[E], name string, get func(*E) (V, bool), nullable bool, opts []AttributeOption) *Attribute[E, V] {
	cfg := attributeConfig{column: name}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Attribute[E, V]{
		name:     name,
		column:   cfg.column,
		nullable: nullable,
		get:      get,
		typ:      reflect.TypeOf((*V)(nil)).Elem(),
	}
	a.kind = KindOf(a.typ)
	if entity != nil {
		a.owner = entity.Name()
	}
	if cfg.target != "" {
		key := cfg.targetKey
		if key == "" {
			key = DefaultKey
		}
		a.join = &Association{
			Name:        name,
			Target:      cfg.target,
			TargetKey:   key,
			LocalColumn: cfg.column,
		}
	}
	return a
}

func (a *Attribute[E, V]) Name() string            { return a.name }
func (a *Attribute[E, V]) Column() string          { return a.column }
func (a *Attribute[E, V]) Owner() string           { return a.owner }
func (a *Attribute[E, V]) ValueType() reflect.Type { return a.typ }
func (a *Attribute[E, V]) Kind() Kind              { return a.kind }
func (a *Attribute[E, V]) Nullable() bool          { return a.nullable }

// Value reads the typed value. ok is false when the attribute is NULL or
// the handle has no accessor.
func (a *Attribute[E, V]) Value(e *E) (v V, ok bool) {
	if a.get == nil || e == nil {
		return v, false
	}
	return a.get(e)
}

// Extract implements Attr.
func (a *Attribute[E, V]) Extract(e *E) any {
	v, ok := a.Value(e)
	if !ok {
		return nil
	}
	return v
}

// Association implements Fetchable.
func (a *Attribute[E, V]) Association() (Association, bool) {
	if a.join == nil {
		return Association{Name: a.name}, false
	}
	return *a.join, true
}

func (a *Attribute[E, V]) String() string {
	if a.owner == "" {
		return a.name
	}
	return a.owner + "." + a.name
}

func (*Attribute[E, V]) attribute(*E) {}
func (*Attribute[E, V]) fetchable(*E) {}

// Plural is a to-many association of entity E whose elements are V.
type Plural[E any, V any] struct {
	owner string
	assoc Association
	get   func(*E) []V
}

// NewPlural creates a to-many association stored in target, where
// target.mappedBy references the owner's key.
func NewPlural[E any, V any](entity *Entity[E], name, target, mappedBy string, get func(*E) []V) *Plural[E, V] {
	p := &Plural[E, V]{
		assoc: Association{
			Name:     name,
			Target:   target,
			MappedBy: mappedBy,
			Plural:   true,
		},
		get: get,
	}
	if entity != nil {
		p.owner = entity.Name()
	}
	return p
}

func (p *Plural[E, V]) Name() string  { return p.assoc.Name }
func (p *Plural[E, V]) Owner() string { return p.owner }

// Association implements Fetchable.
func (p *Plural[E, V]) Association() (Association, bool) { return p.assoc, true }

// Values returns the associated elements held by e.
func (p *Plural[E, V]) Values(e *E) []V {
	if p.get == nil || e == nil {
		return nil
	}
	return p.get(e)
}

func (p *Plural[E, V]) String() string {
	if p.owner == "" {
		return p.assoc.Name
	}
	return p.owner + "." + p.assoc.Name
}

func (*Plural[E, V]) fetchable(*E) {}

// IsNil reports whether ref is nil or a nil pointer, map, slice, func or
// interface. Interfaces holding typed nil pointers are not == nil, so
// handle checks go through this.
func IsNil(ref any) bool {
	if ref == nil {
		return true
	}
	v := reflect.ValueOf(ref)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
