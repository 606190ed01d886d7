package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specq/internal/ir"
)

func TestDDL(t *testing.T) {
	stmts := DDL(loadShop(t))

	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE customers (\n\tid INTEGER PRIMARY KEY,\n\tname TEXT NOT NULL,\n\trating REAL\n)", stmts[0])
	assert.Equal(t, "CREATE TABLE orders (\n"+
		"\tid INTEGER PRIMARY KEY,\n"+
		"\tstatus TEXT NOT NULL,\n"+
		"\ttotal INTEGER NOT NULL,\n"+
		"\tnote TEXT,\n"+
		"\tpaid BOOLEAN NOT NULL,\n"+
		"\tcustomer_id INTEGER REFERENCES customers(id)\n"+
		")", stmts[1])
	assert.Equal(t, "CREATE TABLE order_items (\n\tid INTEGER PRIMARY KEY,\n\torder_id INTEGER NOT NULL,\n\tsku TEXT NOT NULL\n)", stmts[2])
}

func TestDDL_DeclaredKeyAndCycles(t *testing.T) {
	model := mustModel(t, `
		entity: Country: {
			table: "countries"
			key:   "code"
			attributes: {
				code: string
				capital_id: int | null
			}
		}
		entity: City: {
			table: "cities"
			associations: country: {target: "countries", column: "country_code"}
		}
		entity: Employee: {
			table: "employees"
			associations: manager: {target: "employees", column: "manager_id"}
		}
	`)

	stmts := DDL(model)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE countries (\n\tcode TEXT PRIMARY KEY,\n\tcapital_id INTEGER\n)", stmts[0])
	assert.Equal(t, "CREATE TABLE cities (\n\tid INTEGER PRIMARY KEY,\n\tcountry_code TEXT REFERENCES countries(code)\n)", stmts[1])
	assert.Equal(t, "CREATE TABLE employees (\n\tid INTEGER PRIMARY KEY,\n\tmanager_id INTEGER\n)", stmts[2],
		"a self reference gets no foreign key")
}

func TestCompileRow(t *testing.T) {
	model := loadShop(t)
	orders, _ := model.Table("orders")

	row, err := CompileRow(model, orders, map[string]any{
		"id":          1,
		"status":      "PAID",
		"total":       55,
		"paid":        true,
		"customer_id": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, Row{
		"id":          ir.IRInt(1),
		"status":      ir.IRString("PAID"),
		"total":       ir.IRInt(55),
		"note":        ir.IRNull{},
		"paid":        ir.IRBool(true),
		"customer_id": ir.IRInt(2),
	}, row)

	customers, _ := model.Table("customers")
	row, err = CompileRow(model, customers, map[string]any{"id": 1, "name": "Ada", "rating": 4})
	require.NoError(t, err)
	assert.Equal(t, ir.IRFloat(4), row["rating"], "integral values fill float columns")
}

func TestCompileRow_Errors(t *testing.T) {
	model := loadShop(t)
	orders, _ := model.Table("orders")
	base := func() map[string]any {
		return map[string]any{"id": 1, "status": "PAID", "total": 5, "paid": false}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"unknown column", func(r map[string]any) { r["colour"] = "red" }, `unknown column "colour"`},
		{"missing key", func(r map[string]any) { delete(r, "id") }, `missing key "id"`},
		{"missing non-nullable", func(r map[string]any) { delete(r, "status") }, `missing non-nullable column "status"`},
		{"null in non-nullable", func(r map[string]any) { r["total"] = nil }, "null in non-nullable column"},
		{"wrong type", func(r map[string]any) { r["total"] = "five" }, "want int"},
		{"float in int column", func(r map[string]any) { r["total"] = 5.5 }, "want int"},
		{"unsupported value", func(r map[string]any) { r["status"] = struct{}{} }, "unsupported type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base()
			tt.mutate(raw)
			_, err := CompileRow(model, orders, raw)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
