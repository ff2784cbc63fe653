package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// createTestDatabase opens a fresh database file in a temp dir
func createTestDatabase(t *testing.T) *Database {
	t.Helper()
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDatabase(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenDatabase() failed: %v", err)
	}
	t.Cleanup(func() { db.Shutdown() })
	return db
}

// countRows counts the rows of table using a raw connection
func countRows(t *testing.T, db *Database, table string) int {
	t.Helper()
	var n int
	if err := db.mainDB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
