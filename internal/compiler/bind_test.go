package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
)

func TestBind(t *testing.T) {
	b := bindOrder(t)

	assert.Equal(t, "Order", b.Entity.Name())
	assert.Equal(t, "orders", b.Entity.Table())
	assert.Equal(t, "id", b.Entity.Key())

	tests := []struct {
		name     string
		column   string
		kind     metamodel.Kind
		nullable bool
	}{
		{"id", "id", metamodel.KindInt, false},
		{"status", "status", metamodel.KindString, false},
		{"total", "total", metamodel.KindInt, false},
		{"note", "note", metamodel.KindString, true},
		{"paid", "paid", metamodel.KindBool, false},
		{"customer", "customer_id", metamodel.KindInt, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr, ok := b.Attr(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.column, attr.Column())
			assert.Equal(t, tt.kind, attr.Kind())
			assert.Equal(t, tt.nullable, attr.Nullable())
			assert.Equal(t, "Order", attr.Owner())
		})
	}

	_, ok := b.Attr("items")
	assert.False(t, ok, "plural associations are not singular attributes")
	_, ok = b.Attr("missing")
	assert.False(t, ok)
}

func TestBind_Associations(t *testing.T) {
	b := bindOrder(t)

	customer, ok := b.Fetchable("customer")
	require.True(t, ok)
	assoc, ok := customer.Association()
	require.True(t, ok)
	assert.Equal(t, metamodel.Association{
		Name:        "customer",
		Target:      "customers",
		TargetKey:   "id",
		LocalColumn: "customer_id",
	}, assoc)

	items, ok := b.Fetchable("items")
	require.True(t, ok)
	assoc, ok = items.Association()
	require.True(t, ok)
	assert.Equal(t, metamodel.Association{
		Name:     "items",
		Target:   "order_items",
		MappedBy: "order_id",
		Plural:   true,
	}, assoc)

	status, ok := b.Fetchable("status")
	require.True(t, ok)
	_, ok = status.Association()
	assert.False(t, ok, "plain attributes are fetchable but not associations")
}

func TestBind_UnknownEntity(t *testing.T) {
	_, err := Bind(loadShop(t), "Invoice")
	assert.ErrorContains(t, err, "unknown entity")
}

func TestBind_ReadsRows(t *testing.T) {
	b := bindOrder(t)
	row := Row{
		"id":          ir.IRInt(7),
		"status":      ir.IRString("PAID"),
		"total":       ir.IRInt(55),
		"note":        ir.IRNull{},
		"paid":        ir.IRInt(1), // as stored by SQLite without a BOOLEAN column
		"customer_id": ir.IRInt(2),
		"items":       ir.IRArray{ir.IRObject{"id": ir.IRInt(1)}, ir.IRString("skipped")},
	}

	extract := func(name string) any {
		attr, ok := b.Attr(name)
		require.True(t, ok)
		return attr.Extract(&row)
	}
	assert.Equal(t, int64(7), extract("id"))
	assert.Equal(t, "PAID", extract("status"))
	assert.Equal(t, int64(55), extract("total"))
	assert.Nil(t, extract("note"))
	assert.Equal(t, true, extract("paid"))
	assert.Equal(t, int64(2), extract("customer"))

	key, ok := b.Key(row)
	assert.True(t, ok)
	assert.Equal(t, int64(7), key)

	items, _ := b.Fetchable("items")
	plural, ok := items.(*metamodel.Plural[Row, Row])
	require.True(t, ok)
	assert.Equal(t, []Row{{"id": ir.IRInt(1)}}, plural.Values(&row))
}

func TestBind_FloatColumnAcceptsIntegers(t *testing.T) {
	b, err := Bind(loadShop(t), "Customer")
	require.NoError(t, err)

	rating, ok := b.Attr("rating")
	require.True(t, ok)
	assert.Equal(t, 4.0, rating.Extract(&Row{"rating": ir.IRInt(4)}))
	assert.Equal(t, 4.5, rating.Extract(&Row{"rating": ir.IRFloat(4.5)}))
	assert.Nil(t, rating.Extract(&Row{}))
}

func TestBinding_KeyMissing(t *testing.T) {
	b := bindOrder(t)
	_, ok := b.Key(Row{"id": ir.IRString("x")})
	assert.False(t, ok)
}
