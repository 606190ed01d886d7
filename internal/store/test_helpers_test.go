package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/specq/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createOrderStore creates a store holding the sample order book.
func createOrderStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	seed := strings.Join(testutil.SeedSQL(), ";\n")
	if err := s.Migrate(context.Background(), testutil.SchemaSQL, seed); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return s
}
