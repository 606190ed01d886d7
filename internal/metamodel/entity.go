package metamodel

import "strings"

// DefaultKey is the key column used when an entity does not name one.
const DefaultKey = "id"

// Entity names an entity type E: its logical name, table and key column.
// It is the token a builder is bound to.
type Entity[E any] struct {
	name  string
	table string
	key   string
}

// EntityOption configures an Entity.
type EntityOption func(*entityConfig)

type entityConfig struct {
	table string
	key   string
}

// WithTable sets the table an entity is stored in.
// Default: the lower-cased entity name.
func WithTable(table string) EntityOption {
	return func(c *entityConfig) {
		c.table = table
	}
}

// WithKey sets the key column of an entity. Default: DefaultKey.
func WithKey(key string) EntityOption {
	return func(c *entityConfig) {
		c.key = key
	}
}

// NewEntity creates the token for entity type E.
func NewEntity[E any](name string, opts ...EntityOption) *Entity[E] {
	cfg := entityConfig{
		table: strings.ToLower(name),
		key:   DefaultKey,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Entity[E]{name: name, table: cfg.table, key: cfg.key}
}

// Name returns the logical entity name.
func (e *Entity[E]) Name() string { return e.name }

// Table returns the table the entity is stored in.
func (e *Entity[E]) Table() string { return e.table }

// Key returns the key column.
func (e *Entity[E]) Key() string { return e.key }
