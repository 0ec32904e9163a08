// Package testutil provides shared test helpers for setting up tracker databases.
package testutil

import (
	"os"
	"testing"

	"github.com/halldor/dagaz/internal/store"
)

// TestDB creates a temporary seeded SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Seed(); err != nil {
		t.Fatal(err)
	}
	return db
}
