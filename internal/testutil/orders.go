// Package testutil provides a small order-book metamodel and fixture data
// shared by the predicate, builder, engine and store tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/specq/internal/metamodel"
)

// Customer is the target of the Order.customer to-one association.
type Customer struct {
	ID   int64
	Name string
	Tier string
}

// Item is the element of the Order.items to-many association.
type Item struct {
	ID      int64
	OrderID int64
	SKU     string
	Qty     int64
}

// Order is the aggregate root used throughout the tests.
type Order struct {
	ID         int64
	Status     string
	Total      int64
	Note       *string
	Paid       bool
	CustomerID int64
	Customer   *Customer
	Items      []Item
}

// Metamodel handles for Order, written the way a generator would emit them.
var (
	Orders = metamodel.NewEntity[Order]("Order", metamodel.WithTable("orders"))

	OrderID = metamodel.NewAttribute(Orders, "id",
		func(o *Order) int64 { return o.ID })
	OrderStatus = metamodel.NewAttribute(Orders, "status",
		func(o *Order) string { return o.Status })
	OrderTotal = metamodel.NewAttribute(Orders, "total",
		func(o *Order) int64 { return o.Total })
	OrderNote = metamodel.NewNullable(Orders, "note",
		func(o *Order) (string, bool) {
			if o.Note == nil {
				return "", false
			}
			return *o.Note, true
		})
	OrderPaid = metamodel.NewAttribute(Orders, "paid",
		func(o *Order) bool { return o.Paid })
	OrderCustomer = metamodel.NewAttribute(Orders, "customer",
		func(o *Order) int64 { return o.CustomerID },
		metamodel.WithColumn("customer_id"),
		metamodel.References("customers", "id"))
	OrderItems = metamodel.NewPlural(Orders, "items", "order_items", "order_id",
		func(o *Order) []Item { return o.Items })
)

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// SampleCustomers returns the customers referenced by SampleOrders.
func SampleCustomers() []Customer {
	return []Customer{
		{ID: 1, Name: "Ada", Tier: "gold"},
		{ID: 2, Name: "Bob", Tier: "silver"},
		{ID: 3, Name: "Cy", Tier: "bronze"},
	}
}

// SampleOrders returns a fresh copy of the fixture orders, in key order.
func SampleOrders() []Order {
	return []Order{
		{ID: 1, Status: "PAID", Total: 55, Note: Str("gift"), Paid: true, CustomerID: 1,
			Items: []Item{{ID: 1, OrderID: 1, SKU: "A-1", Qty: 2}}},
		{ID: 2, Status: "PAID", Total: 5, Paid: true, CustomerID: 2},
		{ID: 3, Status: "PENDING", Total: 55, Note: Str("rush"), CustomerID: 1,
			Items: []Item{{ID: 2, OrderID: 3, SKU: "B-7", Qty: 1}, {ID: 3, OrderID: 3, SKU: "C-3", Qty: 4}}},
		{ID: 4, Status: "PAID", Total: 100, Paid: true, CustomerID: 2,
			Items: []Item{{ID: 4, OrderID: 4, SKU: "A-1", Qty: 1}}},
		{ID: 5, Status: "CANCELLED", Total: 10, Note: Str("refund 100%"), CustomerID: 3},
		{ID: 6, Status: "PAID_PARTIAL", Total: 250, CustomerID: 3},
	}
}

// IDs returns the keys of orders, in order.
func IDs(orders []Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

// SchemaSQL creates the tables backing the Order metamodel.
const SchemaSQL = `
CREATE TABLE customers (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	tier TEXT NOT NULL
);
CREATE TABLE orders (
	id          INTEGER PRIMARY KEY,
	status      TEXT NOT NULL,
	total       INTEGER NOT NULL,
	note        TEXT,
	paid        BOOLEAN NOT NULL,
	customer_id INTEGER NOT NULL REFERENCES customers(id)
);
CREATE TABLE order_items (
	id       INTEGER PRIMARY KEY,
	order_id INTEGER NOT NULL REFERENCES orders(id),
	sku      TEXT NOT NULL,
	qty      INTEGER NOT NULL
);
`

// SeedSQL returns INSERT statements for the sample customers and orders.
// Literals are fixed fixture values; nothing here comes from user input.
func SeedSQL() []string {
	var stmts []string
	for _, c := range SampleCustomers() {
		stmts = append(stmts, fmt.Sprintf(
			"INSERT INTO customers (id, name, tier) VALUES (%d, %s, %s)",
			c.ID, quote(c.Name), quote(c.Tier)))
	}
	for _, o := range SampleOrders() {
		note := "NULL"
		if o.Note != nil {
			note = quote(*o.Note)
		}
		paid := 0
		if o.Paid {
			paid = 1
		}
		stmts = append(stmts, fmt.Sprintf(
			"INSERT INTO orders (id, status, total, note, paid, customer_id) VALUES (%d, %s, %d, %s, %d, %d)",
			o.ID, quote(o.Status), o.Total, note, paid, o.CustomerID))
		for _, it := range o.Items {
			stmts = append(stmts, fmt.Sprintf(
				"INSERT INTO order_items (id, order_id, sku, qty) VALUES (%d, %d, %s, %d)",
				it.ID, it.OrderID, quote(it.SKU), it.Qty))
		}
	}
	return stmts
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
