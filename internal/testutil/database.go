// Package testutil provides utilities for testing.
package testutil

import (
	"context"
	"testing"

	"github.com/vitashop/vitashop/internal/database"
)

// NewTestDB creates a migrated in-memory database that is closed when the
// test ends.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// AssertRowCount verifies the number of rows in a table.
func AssertRowCount(t *testing.T, db *database.DB, table string, expected int) {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}

	if count != expected {
		t.Errorf("expected %d rows in %s, got %d", expected, table, count)
	}
}
