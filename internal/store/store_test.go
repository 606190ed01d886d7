package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/specq/internal/ir"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	path := "/nonexistent/dir/test.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	// First close should succeed
	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}

	// Verify it's usable
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

// Migration tests

func TestMigrate_AppliesStepsAndTracksVersion(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	steps := []string{
		"CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)",
		"ALTER TABLE widgets ADD COLUMN size INTEGER; INSERT INTO widgets (id, name, size) VALUES (1, 'w', 3)",
	}
	if err := s.Migrate(ctx, steps...); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	if version := userVersion(t, s.db); version != 2 {
		t.Errorf("user_version = %d, want 2", version)
	}

	var size int
	if err := s.db.QueryRow("SELECT size FROM widgets WHERE id = 1").Scan(&size); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if size != 3 {
		t.Errorf("size = %d, want 3", size)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	step := "CREATE TABLE widgets (id INTEGER PRIMARY KEY)"

	// CREATE TABLE without IF NOT EXISTS fails if re-run
	for i := 0; i < 3; i++ {
		if err := s.Migrate(ctx, step); err != nil {
			t.Fatalf("Migrate() iteration %d failed: %v", i, err)
		}
	}

	if err := s.Migrate(ctx, step, "CREATE INDEX idx_widgets ON widgets(id)"); err != nil {
		t.Fatalf("Migrate() with appended step failed: %v", err)
	}
	if version := userVersion(t, s.db); version != 2 {
		t.Errorf("user_version = %d, want 2", version)
	}
}

func TestMigrate_FailedStepRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Migrate(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY); INSERT INTO nowhere VALUES (1)")
	if err == nil {
		t.Fatal("expected error for failing step, got nil")
	}
	if version := userVersion(t, s.db); version != 0 {
		t.Errorf("user_version = %d, want 0 after rollback", version)
	}

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='widgets'").Scan(&name)
	if err != sql.ErrNoRows {
		t.Errorf("widgets table should not exist after rollback, got err=%v", err)
	}
}

func TestMigrate_RejectsNewerDatabase(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.db.Exec("PRAGMA user_version = 5"); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	if err := s.Migrate(ctx, "CREATE TABLE widgets (id INTEGER)"); err == nil {
		t.Error("expected error for database newer than migrations, got nil")
	}
}

func TestInsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Migrate(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT, size REAL)"); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	row := ir.IRObject{"id": ir.IRInt(1), "name": ir.IRNull{}, "size": ir.IRFloat(2.5)}
	if err := s.Insert(ctx, "widgets", row); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	rows, err := s.Select(ctx, "SELECT * FROM widgets")
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if _, null := rows[0]["name"].(ir.IRNull); !null {
		t.Errorf("name = %#v, want IRNull", rows[0]["name"])
	}
	if rows[0]["size"] != ir.IRFloat(2.5) {
		t.Errorf("size = %#v, want 2.5", rows[0]["size"])
	}

	if err := s.Insert(ctx, "widgets; --", row); err == nil {
		t.Error("expected error for invalid table name, got nil")
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements(" A; ;\nB;\n")
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("splitStatements() = %q", got)
	}
}

// Helper functions

func userVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	return version
}
