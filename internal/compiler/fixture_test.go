package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// shopModel is the order book used across the compiler tests.
const shopModel = `
entity: Order: {
	table: "orders"
	attributes: {
		status: string
		total:  int
		note:   string | null
		paid:   bool
	}
	associations: {
		customer: {target: "customers", column: "customer_id"}
		items:    {target: "order_items", mapped_by: "order_id", plural: true}
	}
}

entity: Customer: {
	table: "customers"
	attributes: {
		name:   string
		rating: float | null
	}
}

entity: Item: {
	table: "order_items"
	attributes: {
		order_id: int
		sku:      string
	}
}
`

func loadShop(t *testing.T) *Model {
	t.Helper()
	model, err := CompileModelString(shopModel)
	require.NoError(t, err)
	require.Empty(t, Validate(model))
	return model
}

func bindOrder(t *testing.T) *Binding {
	t.Helper()
	b, err := Bind(loadShop(t), "Order")
	require.NoError(t, err)
	return b
}
