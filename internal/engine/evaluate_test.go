package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/predicate"
	"github.com/roach88/specq/internal/testutil"
)

type order = testutil.Order

func must(t *testing.T, p predicate.Predicate[order], err error) predicate.Predicate[order] {
	t.Helper()
	require.NoError(t, err)
	return p
}

func matchIDs(t *testing.T, p predicate.Predicate[order]) []int64 {
	t.Helper()
	matched, err := Filter(p, testutil.SampleOrders())
	require.NoError(t, err)
	return testutil.IDs(matched)
}

func TestFilter_AtomicPredicates(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (predicate.Predicate[order], error)
		expected []int64
	}{
		{"equal", func() (predicate.Predicate[order], error) { return predicate.Equal(testutil.OrderStatus, "PAID") }, []int64{1, 2, 4}},
		{"equal is case sensitive", func() (predicate.Predicate[order], error) { return predicate.Equal(testutil.OrderStatus, "paid") }, []int64{}},
		{"not equal skips null", func() (predicate.Predicate[order], error) { return predicate.NotEqual(testutil.OrderNote, "gift") }, []int64{3, 5}},
		{"equal nil", func() (predicate.Predicate[order], error) { return predicate.Equal(testutil.OrderNote, nil) }, []int64{2, 4, 6}},
		{"not equal nil", func() (predicate.Predicate[order], error) { return predicate.NotEqual(testutil.OrderNote, nil) }, []int64{1, 3, 5}},
		{"is null", func() (predicate.Predicate[order], error) { return predicate.IsNull(testutil.OrderNote) }, []int64{2, 4, 6}},
		{"is not null", func() (predicate.Predicate[order], error) { return predicate.IsNotNull(testutil.OrderNote) }, []int64{1, 3, 5}},
		{"like is ascii case insensitive", func() (predicate.Predicate[order], error) { return predicate.Like(testutil.OrderStatus, "paid%") }, []int64{1, 2, 4, 6}},
		{"like underscore", func() (predicate.Predicate[order], error) { return predicate.Like(testutil.OrderStatus, "P_ID") }, []int64{1, 2, 4}},
		{"like on nullable", func() (predicate.Predicate[order], error) { return predicate.Like(testutil.OrderNote, "%100%") }, []int64{5}},
		{"not like", func() (predicate.Predicate[order], error) { return predicate.NotLike(testutil.OrderStatus, "PAID%") }, []int64{3, 5}},
		{"equal or like", func() (predicate.Predicate[order], error) { return predicate.EqualToOrLike(testutil.OrderStatus, "PAID%") }, []int64{1, 2, 4, 6}},
		{"equal or like exact", func() (predicate.Predicate[order], error) { return predicate.EqualToOrLike(testutil.OrderStatus, "PENDING") }, []int64{3}},
		{"is true", func() (predicate.Predicate[order], error) { return predicate.IsTrue(testutil.OrderPaid) }, []int64{1, 2, 4}},
		{"is false", func() (predicate.Predicate[order], error) { return predicate.IsFalse(testutil.OrderPaid) }, []int64{3, 5, 6}},
		{"gt", func() (predicate.Predicate[order], error) { return predicate.GreaterThan(testutil.OrderTotal, 55) }, []int64{4, 6}},
		{"ge", func() (predicate.Predicate[order], error) { return predicate.GreaterThanOrEqualTo(testutil.OrderTotal, 55) }, []int64{1, 3, 4, 6}},
		{"lt", func() (predicate.Predicate[order], error) { return predicate.LessThan(testutil.OrderTotal, 10) }, []int64{2}},
		{"le", func() (predicate.Predicate[order], error) { return predicate.LessThanOrEqualTo(testutil.OrderTotal, 10) }, []int64{2, 5}},
		{"between is inclusive", func() (predicate.Predicate[order], error) { return predicate.Between(testutil.OrderTotal, 10, 100) }, []int64{1, 3, 4, 5}},
		{"between text", func() (predicate.Predicate[order], error) { return predicate.Between(testutil.OrderStatus, "PAID", "PAIE") }, []int64{1, 2, 4, 6}},
		{"in", func() (predicate.Predicate[order], error) { return predicate.In(testutil.OrderStatus, "PAID", "CANCELLED") }, []int64{1, 2, 4, 5}},
		{"in empty", func() (predicate.Predicate[order], error) { return predicate.In(testutil.OrderStatus) }, []int64{}},
		{"in with null member", func() (predicate.Predicate[order], error) { return predicate.In(testutil.OrderNote, "gift", nil) }, []int64{1}},
		{"fetch only", func() (predicate.Predicate[order], error) { return predicate.FetchOf[order](testutil.OrderItems) }, []int64{1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := must(t, tt.build())
			assert.Equal(t, tt.expected, matchIDs(t, p))
		})
	}
}

func TestFilter_NilPredicateMatchesAll(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, matchIDs(t, nil))
}

func TestFilter_Composites(t *testing.T) {
	paid := must(t, predicate.Equal(testutil.OrderStatus, "PAID"))
	inRange := must(t, predicate.Between(testutil.OrderTotal, 10, 100))
	noted := must(t, predicate.IsNotNull(testutil.OrderNote))

	assert.Equal(t, []int64{1, 4}, matchIDs(t, must(t, predicate.AllOf(paid, inRange))))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, matchIDs(t, must(t, predicate.AnyOf(paid, inRange))))

	left := must(t, predicate.AllOf(must(t, predicate.AllOf(paid, inRange)), noted))
	right := must(t, predicate.AllOf(paid, must(t, predicate.AllOf(inRange, noted))))
	assert.Equal(t, matchIDs(t, left), matchIDs(t, right), "AND is associative")
	assert.Equal(t, []int64{1}, matchIDs(t, left))
}

func TestFilter_FetchIsNeutral(t *testing.T) {
	paid := must(t, predicate.Equal(testutil.OrderStatus, "PAID"))
	items := must(t, predicate.FetchOf[order](testutil.OrderItems))
	customer := must(t, predicate.FetchOf[order](testutil.OrderCustomer))
	expected := matchIDs(t, paid)

	tests := map[string]predicate.Predicate[order]{
		"and":          must(t, predicate.AllOf(paid, items)),
		"and reversed": must(t, predicate.AllOf(items, paid)),
		"or":           must(t, predicate.AnyOf(paid, items)),
		"or reversed":  must(t, predicate.AnyOf(items, paid)),
		"nested":       must(t, predicate.AnyOf(must(t, predicate.AllOf(items, customer)), paid)),
	}

	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, expected, matchIDs(t, p))
		})
	}
}

func TestFilter_EmptyCompositesRestrictNothing(t *testing.T) {
	assert.Len(t, matchIDs(t, &predicate.And[order]{}), 6)
	assert.Len(t, matchIDs(t, predicate.Or[order]{}), 6)
}

func TestFilter_ValueNodes(t *testing.T) {
	p := predicate.Comparison[order]{Attr: testutil.OrderStatus, Op: predicate.OpEqual, Value: ir.IRString("PENDING")}
	assert.Equal(t, []int64{3}, matchIDs(t, p))
}

func TestEvaluate(t *testing.T) {
	p := must(t, predicate.Equal(testutil.OrderStatus, "PAID"))

	ok, err := Evaluate(p, &order{Status: "PAID"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Evaluate(p, nil)
	require.NoError(t, err)
	assert.False(t, ok, "nil entity reads every attribute as NULL")

	ok, err = Evaluate(must(t, predicate.IsNull(testutil.OrderNote)), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

type tagged struct {
	Tags []chan int
}

func TestEvaluate_UnsupportedValue(t *testing.T) {
	entity := metamodel.NewEntity[tagged]("Tagged")
	tags := metamodel.NewAttribute(entity, "tags", func(t *tagged) []chan int { return t.Tags })
	p := &predicate.Null[tagged]{Attr: tags}

	_, err := Evaluate[tagged](p, &tagged{Tags: []chan int{make(chan int)}})
	require.Error(t, err)
	assert.True(t, IsUnsupportedValue(err))
	assert.False(t, IsUnknownPredicate(err))
	assert.Contains(t, err.Error(), "attr=Tagged.tags")
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     ir.IRValue
		expected int
		ok       bool
	}{
		{"ints", ir.IRInt(1), ir.IRInt(2), -1, true},
		{"int float", ir.IRInt(2), ir.IRFloat(1.5), 1, true},
		{"float int equal", ir.IRFloat(3), ir.IRInt(3), 0, true},
		{"bool as int", ir.IRBool(true), ir.IRInt(1), 0, true},
		{"text bytewise", ir.IRString("B"), ir.IRString("a"), -1, true},
		{"number before text", ir.IRInt(99), ir.IRString("1"), -1, true},
		{"array unordered", ir.IRArray{}, ir.IRInt(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compare(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
