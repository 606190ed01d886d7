package builder

import (
	"errors"
	"log/slog"

	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/predicate"
)

// Fold operators, as reported in errors and logs.
const (
	opWhere predicate.Op = "where"
	opAnd   predicate.Op = "and"
	opOr    predicate.Op = "or"
	opWith  predicate.Op = "with"
	opIs    predicate.Op = "is"
	opFrom  predicate.Op = "from"
)

// Builder accumulates a composite predicate over entities of type E.
type Builder[E any] struct {
	entity *metamodel.Entity[E]
	state  predicate.Predicate[E] // nil until the first fold
	errs   []error
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger folds and rejections are reported to.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// From creates an Empty builder bound to entity.
func From[E any](entity *metamodel.Entity[E], opts ...Option) *Builder[E] {
	b := New[E](opts...)
	b.entity = entity
	if entity == nil {
		b.reject(&predicate.ArgumentError{Op: opFrom, Arg: "entity", Reason: "must not be nil"})
	}
	return b
}

// New creates an Empty builder for E without an entity token. Engines that
// need a table name require From.
func New[E any](opts ...Option) *Builder[E] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Builder[E]{logger: o.logger}
}

// Entity returns the entity token the builder is bound to, or nil.
func (b *Builder[E]) Entity() *metamodel.Entity[E] {
	return b.entity
}

// Where folds each of ps in conjunctively. With no arguments it does
// nothing.
func (b *Builder[E]) Where(ps ...predicate.Predicate[E]) *Builder[E] {
	for _, p := range ps {
		b.fold(opWhere, p)
	}
	return b
}

// And folds each of ps in conjunctively. With no arguments it does nothing.
func (b *Builder[E]) And(ps ...predicate.Predicate[E]) *Builder[E] {
	for _, p := range ps {
		b.fold(opAnd, p)
	}
	return b
}

// Or folds each of ps in disjunctively. With no arguments it does nothing.
// Into an Empty builder the first predicate becomes the state.
func (b *Builder[E]) Or(ps ...predicate.Predicate[E]) *Builder[E] {
	for _, p := range ps {
		b.fold(opOr, p)
	}
	return b
}

// With adds a fetch hint for each association. With no arguments it does
// nothing.
func (b *Builder[E]) With(assocs ...metamodel.Fetchable[E]) *Builder[E] {
	for _, a := range assocs {
		b.add(predicate.FetchOf(a))
	}
	return b
}

// Is folds the result of a typed factory call conjunctively:
//
//	b.Is(predicate.GreaterThan(testutil.OrderTotal, 10))
func (b *Builder[E]) Is(p predicate.Predicate[E], err error) *Builder[E] {
	if err != nil {
		b.reject(err)
		return b
	}
	b.fold(opIs, p)
	return b
}

func (b *Builder[E]) IsEqualTo(attr metamodel.Attr[E], value any) *Builder[E] {
	return b.add(predicate.Equal(attr, value))
}

func (b *Builder[E]) IsNotEqualTo(attr metamodel.Attr[E], value any) *Builder[E] {
	return b.add(predicate.NotEqual(attr, value))
}

func (b *Builder[E]) IsLike(attr metamodel.Attr[E], pattern string) *Builder[E] {
	return b.add(predicate.New(predicate.OpLike, attr, pattern))
}

func (b *Builder[E]) IsNotLike(attr metamodel.Attr[E], pattern string) *Builder[E] {
	return b.add(predicate.New(predicate.OpNotLike, attr, pattern))
}

// IsEqualToOrLike folds (attr = value OR attr LIKE value).
func (b *Builder[E]) IsEqualToOrLike(attr metamodel.Attr[E], value string) *Builder[E] {
	return b.add(predicate.New(predicate.OpEqualOrLike, attr, value))
}

func (b *Builder[E]) IsNull(attr metamodel.Attr[E]) *Builder[E] {
	return b.add(predicate.IsNull(attr))
}

func (b *Builder[E]) IsNotNull(attr metamodel.Attr[E]) *Builder[E] {
	return b.add(predicate.IsNotNull(attr))
}

func (b *Builder[E]) IsTrue(attr metamodel.Attr[E]) *Builder[E] {
	return b.add(predicate.New(predicate.OpIsTrue, attr))
}

func (b *Builder[E]) IsFalse(attr metamodel.Attr[E]) *Builder[E] {
	return b.add(predicate.New(predicate.OpIsFalse, attr))
}

func (b *Builder[E]) IsGreaterThan(attr metamodel.Attr[E], value any) *Builder[E] {
	return b.add(predicate.New(predicate.OpGreaterThan, attr, value))
}

func (b *Builder[E]) IsGreaterThanOrEqualTo(attr metamodel.Attr[E], value any) *Builder[E] {
	return b.add(predicate.New(predicate.OpGreaterOrEqual, attr, value))
}

func (b *Builder[E]) IsLessThan(attr metamodel.Attr[E], value any) *Builder[E] {
	return b.add(predicate.New(predicate.OpLessThan, attr, value))
}

func (b *Builder[E]) IsLessThanOrEqualTo(attr metamodel.Attr[E], value any) *Builder[E] {
	return b.add(predicate.New(predicate.OpLessOrEqual, attr, value))
}

// IsBetween folds lower <= attr <= upper.
func (b *Builder[E]) IsBetween(attr metamodel.Attr[E], lower, upper any) *Builder[E] {
	return b.add(predicate.New(predicate.OpBetween, attr, lower, upper))
}

// IsIn folds attr IN (values...). With no values the folded predicate
// matches nothing.
func (b *Builder[E]) IsIn(attr metamodel.Attr[E], values ...any) *Builder[E] {
	return b.add(predicate.In(attr, values...))
}

// IsInCollection folds attr IN values, where values is a slice or array.
// A nil or empty collection matches nothing.
func (b *Builder[E]) IsInCollection(attr metamodel.Attr[E], values any) *Builder[E] {
	return b.add(predicate.InCollection(attr, values))
}

// FetchOf adds a fetch hint for one association.
func (b *Builder[E]) FetchOf(assoc metamodel.Fetchable[E]) *Builder[E] {
	return b.add(predicate.FetchOf(assoc))
}

// ToSpecification returns the composite predicate (nil when Empty) and the
// joined errors of every rejected call. It does not change the builder.
func (b *Builder[E]) ToSpecification() (predicate.Predicate[E], error) {
	return b.state, b.Err()
}

// Err returns the joined errors of every rejected call, or nil.
func (b *Builder[E]) Err() error {
	return errors.Join(b.errs...)
}

// add folds the result of a factory call conjunctively.
func (b *Builder[E]) add(p predicate.Predicate[E], err error) *Builder[E] {
	if err != nil {
		b.reject(err)
		return b
	}
	b.fold(opAnd, p)
	return b
}

func (b *Builder[E]) fold(op predicate.Op, p predicate.Predicate[E]) {
	if predicate.IsNilPredicate(p) {
		b.reject(&predicate.ArgumentError{Op: op, Arg: "predicate", Reason: "must not be nil"})
		return
	}

	switch {
	case b.state == nil:
		b.state = p
	case op == opOr:
		b.state = &predicate.Or[E]{Predicates: []predicate.Predicate[E]{b.state, p}}
	default:
		b.state = &predicate.And[E]{Predicates: []predicate.Predicate[E]{b.state, p}}
	}

	b.logger.Debug("predicate folded",
		"entity", b.entityName(),
		"op", string(op),
		"predicate", predicate.String(p),
	)
}

func (b *Builder[E]) reject(err error) {
	b.errs = append(b.errs, err)
	b.logger.Warn("argument rejected",
		"entity", b.entityName(),
		"error", err,
	)
}

func (b *Builder[E]) entityName() string {
	if b.entity == nil {
		return ""
	}
	return b.entity.Name()
}
