package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/testutil"
)

type order = testutil.Order

func TestEqual(t *testing.T) {
	p, err := Equal(testutil.OrderStatus, "PAID")
	require.NoError(t, err)

	assert.Equal(t, &Comparison[order]{
		Attr:  testutil.OrderStatus,
		Op:    OpEqual,
		Value: ir.IRString("PAID"),
	}, p)
}

func TestEqual_NilValueIsNullCheck(t *testing.T) {
	p, err := Equal(testutil.OrderNote, nil)
	require.NoError(t, err)
	assert.Equal(t, &Null[order]{Attr: testutil.OrderNote}, p)

	p, err = NotEqual(testutil.OrderNote, nil)
	require.NoError(t, err)
	assert.Equal(t, &Null[order]{Attr: testutil.OrderNote, Negated: true}, p)

	var missing *string
	p, err = Equal(testutil.OrderNote, missing)
	require.NoError(t, err, "typed nil pointer is a nil value")
	assert.Equal(t, &Null[order]{Attr: testutil.OrderNote}, p)
}

func TestEqual_PointerOperandIsDereferenced(t *testing.T) {
	p, err := Equal(testutil.OrderNote, testutil.Str("gift"))
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("gift"), p.(*Comparison[order]).Value)
}

func TestLike(t *testing.T) {
	p, err := Like(testutil.OrderStatus, "PAID%")
	require.NoError(t, err)
	assert.Equal(t, &Comparison[order]{Attr: testutil.OrderStatus, Op: OpLike, Value: ir.IRString("PAID%")}, p)

	p, err = NotLike(testutil.OrderStatus, "_AID")
	require.NoError(t, err)
	assert.Equal(t, OpNotLike, p.(*Comparison[order]).Op)
	assert.Equal(t, ir.IRString("_AID"), p.(*Comparison[order]).Value, "wildcards pass through verbatim")
}

func TestEqualToOrLike(t *testing.T) {
	p, err := EqualToOrLike(testutil.OrderStatus, "PAID%")
	require.NoError(t, err)

	or, ok := p.(*Or[order])
	require.True(t, ok)
	require.Len(t, or.Predicates, 2)
	assert.Equal(t, &Comparison[order]{Attr: testutil.OrderStatus, Op: OpEqual, Value: ir.IRString("PAID%")}, or.Predicates[0])
	assert.Equal(t, &Comparison[order]{Attr: testutil.OrderStatus, Op: OpLike, Value: ir.IRString("PAID%")}, or.Predicates[1])
}

func TestNullChecks(t *testing.T) {
	p, err := IsNull(testutil.OrderNote)
	require.NoError(t, err)
	assert.Equal(t, &Null[order]{Attr: testutil.OrderNote}, p)

	p, err = IsNotNull(testutil.OrderNote)
	require.NoError(t, err)
	assert.Equal(t, &Null[order]{Attr: testutil.OrderNote, Negated: true}, p)
}

func TestBooleanChecks(t *testing.T) {
	p, err := IsTrue(testutil.OrderPaid)
	require.NoError(t, err)
	assert.Equal(t, &Comparison[order]{Attr: testutil.OrderPaid, Op: OpEqual, Value: ir.IRBool(true)}, p)

	p, err = IsFalse(testutil.OrderPaid)
	require.NoError(t, err)
	assert.Equal(t, &Comparison[order]{Attr: testutil.OrderPaid, Op: OpEqual, Value: ir.IRBool(false)}, p)
}

func TestOrdering(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Predicate[order], error)
		op   Op
	}{
		{"gt", func() (Predicate[order], error) { return GreaterThan(testutil.OrderTotal, 10) }, OpGreaterThan},
		{"ge", func() (Predicate[order], error) { return GreaterThanOrEqualTo(testutil.OrderTotal, 10) }, OpGreaterOrEqual},
		{"lt", func() (Predicate[order], error) { return LessThan(testutil.OrderTotal, 10) }, OpLessThan},
		{"le", func() (Predicate[order], error) { return LessThanOrEqualTo(testutil.OrderTotal, 10) }, OpLessOrEqual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.fn()
			require.NoError(t, err)
			assert.Equal(t, &Comparison[order]{Attr: testutil.OrderTotal, Op: tt.op, Value: ir.IRInt(10)}, p)
		})
	}
}

func TestBetween(t *testing.T) {
	p, err := Between(testutil.OrderTotal, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, &Between[order]{Attr: testutil.OrderTotal, Lower: ir.IRInt(10), Upper: ir.IRInt(100)}, p)
}

func TestIn(t *testing.T) {
	p, err := In(testutil.OrderStatus, "PAID", "PENDING", nil)
	require.NoError(t, err)
	assert.Equal(t, &In[order]{
		Attr:   testutil.OrderStatus,
		Values: []ir.IRValue{ir.IRString("PAID"), ir.IRString("PENDING"), ir.IRNull{}},
	}, p)

	p, err = InSlice(testutil.OrderTotal, []int64{5, 10})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRInt(5), ir.IRInt(10)}, p.(*In[order]).Values)
}

func TestIn_EmptyInputMatchesNothing(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Predicate[order], error)
	}{
		{"no variadic values", func() (Predicate[order], error) { return In(testutil.OrderStatus) }},
		{"empty slice", func() (Predicate[order], error) { return InSlice(testutil.OrderStatus, []string{}) }},
		{"nil slice", func() (Predicate[order], error) { return InSlice[order, string](testutil.OrderStatus, nil) }},
		{"New with nil slice", func() (Predicate[order], error) { return New(OpIn, testutil.OrderStatus, []string(nil)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.fn()
			require.NoError(t, err)
			in, ok := p.(*In[order])
			require.True(t, ok)
			assert.Empty(t, in.Values)
		})
	}
}

func TestNew_SpreadsSliceOperand(t *testing.T) {
	p, err := New(OpIn, testutil.OrderStatus, []string{"PAID", "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRString("PAID"), ir.IRString("PENDING")}, p.(*In[order]).Values)
}

func TestFetchOf(t *testing.T) {
	p, err := FetchOf[order](testutil.OrderItems)
	require.NoError(t, err)
	assert.Equal(t, &Fetch[order]{Target: testutil.OrderItems}, p)

	p, err = FetchOf[order](testutil.OrderCustomer)
	require.NoError(t, err)
	assert.Equal(t, &Fetch[order]{Target: testutil.OrderCustomer}, p)
}

func TestAllOfAnyOf(t *testing.T) {
	paid, _ := Equal(testutil.OrderStatus, "PAID")
	cheap, _ := LessThan(testutil.OrderTotal, 10)

	p, err := AllOf(paid, cheap)
	require.NoError(t, err)
	assert.Equal(t, &And[order]{Predicates: []Predicate[order]{paid, cheap}}, p)

	p, err = AnyOf(paid, cheap)
	require.NoError(t, err)
	assert.Equal(t, &Or[order]{Predicates: []Predicate[order]{paid, cheap}}, p)

	_, err = AllOf[order]()
	assert.True(t, IsInvalidArgument(err))

	var missing *Comparison[order]
	_, err = AnyOf(paid, missing)
	assert.True(t, IsInvalidArgument(err))
	ae, ok := AsArgumentError(err)
	require.True(t, ok)
	assert.Equal(t, "predicates[1]", ae.Arg)
}

func TestNilAttributeIsInvalidArgument(t *testing.T) {
	var status *metamodel.Attribute[order, string]
	var total *metamodel.Attribute[order, int64]
	var paid *metamodel.Attribute[order, bool]
	var items *metamodel.Plural[order, testutil.Item]

	calls := map[string]func() (Predicate[order], error){
		"equal":      func() (Predicate[order], error) { return Equal[order](nil, "x") },
		"typed nil":  func() (Predicate[order], error) { return Equal[order](status, "x") },
		"like":       func() (Predicate[order], error) { return Like(status, "x") },
		"is_null":    func() (Predicate[order], error) { return IsNull[order](status) },
		"is_true":    func() (Predicate[order], error) { return IsTrue(paid) },
		"gt":         func() (Predicate[order], error) { return GreaterThan(total, 1) },
		"between":    func() (Predicate[order], error) { return Between(total, 1, 2) },
		"in":         func() (Predicate[order], error) { return In[order](nil, 1) },
		"in slice":   func() (Predicate[order], error) { return InSlice(total, []int64{1}) },
		"fetch":      func() (Predicate[order], error) { return FetchOf[order](nil) },
		"fetch nil":  func() (Predicate[order], error) { return FetchOf[order](items) },
		"new/equal":  func() (Predicate[order], error) { return New[order](OpEqual, nil, 1) },
		"new/in nil": func() (Predicate[order], error) { return New[order](OpIn, nil) },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			p, err := call()
			assert.Nil(t, p)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))
			ae, ok := AsArgumentError(err)
			require.True(t, ok)
			assert.Equal(t, "attr", ae.Arg)
		})
	}
}

func TestNew_RejectsBadOperands(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		attr     metamodel.Attr[order]
		operands []any
		arg      string
	}{
		{"unknown op", Op("near"), testutil.OrderTotal, []any{1}, "op"},
		{"missing operand", OpEqual, testutil.OrderTotal, nil, "operands"},
		{"extra operand", OpIsNull, testutil.OrderNote, []any{1}, "operands"},
		{"between needs two", OpBetween, testutil.OrderTotal, []any{1}, "operands"},
		{"nil like pattern", OpLike, testutil.OrderStatus, []any{nil}, "value"},
		{"nil ordering bound", OpGreaterThan, testutil.OrderTotal, []any{nil}, "value"},
		{"nil between bound", OpBetween, testutil.OrderTotal, []any{1, nil}, "upper"},
		{"like on int", OpLike, testutil.OrderTotal, []any{"1%"}, "attr"},
		{"is_true on string", OpIsTrue, testutil.OrderStatus, nil, "attr"},
		{"gt on bool", OpGreaterThan, testutil.OrderPaid, []any{true}, "attr"},
		{"string for int", OpEqual, testutil.OrderTotal, []any{"55"}, "value"},
		{"int for string", OpEqual, testutil.OrderStatus, []any{55}, "value"},
		{"fraction for int", OpEqual, testutil.OrderTotal, []any{5.5}, "value"},
		{"bad in member", OpIn, testutil.OrderTotal, []any{1, "two"}, "values[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.op, tt.attr, tt.operands...)
			assert.Nil(t, p)
			require.Error(t, err)
			ae, ok := AsArgumentError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.arg, ae.Arg)
		})
	}
}

func TestNew_ConvertsNumericOperands(t *testing.T) {
	tests := []struct {
		name    string
		operand any
	}{
		{"int", 55},
		{"int32", int32(55)},
		{"uint8", uint8(55)},
		{"integral float", 55.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(OpEqual, testutil.OrderTotal, tt.operand)
			require.NoError(t, err)
			assert.Equal(t, ir.IRInt(55), p.(*Comparison[order]).Value)
		})
	}
}

type status string

func TestNew_ConvertsNamedStrings(t *testing.T) {
	p, err := New(OpEqual, testutil.OrderStatus, status("PAID"))
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("PAID"), p.(*Comparison[order]).Value)
}

func TestParseOp(t *testing.T) {
	for _, op := range Ops() {
		parsed, err := ParseOp(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}

	_, err := ParseOp("approximately")
	assert.True(t, IsInvalidArgument(err))
	assert.Len(t, Ops(), 15)
	assert.Equal(t, 2, OpBetween.Arity())
	assert.Equal(t, -1, OpIn.Arity())
}

func TestArgumentError_Message(t *testing.T) {
	_, err := Like(testutil.OrderStatus, "x")
	require.NoError(t, err)

	_, err = New(OpLike, testutil.OrderTotal, "1%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument: like: attr must be a text attribute")
	assert.Contains(t, err.Error(), "Order.total (int64)")
}

func TestInCollection(t *testing.T) {
	p, err := InCollection[order](testutil.OrderStatus, []string{"PAID"})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRString("PAID")}, p.(*In[order]).Values)

	p, err = InCollection[order](testutil.OrderStatus, [2]any{"PAID", nil})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRString("PAID"), ir.IRNull{}}, p.(*In[order]).Values)

	p, err = InCollection[order](testutil.OrderStatus, nil)
	require.NoError(t, err)
	assert.Empty(t, p.(*In[order]).Values)

	_, err = InCollection[order](testutil.OrderStatus, "PAID")
	assert.True(t, IsInvalidArgument(err))
}
