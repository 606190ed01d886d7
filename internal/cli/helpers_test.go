package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const shopModel = `package shop

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
		items: {target: "order_items", mapped_by: "order_id", plural: true}
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

// writeModel writes src as the only file of a fresh model directory.
func writeModel(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.cue"), []byte(src), 0644))
	return dir
}

// writeFile writes content to name in a fresh directory and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
