package services

import (
	"database/sql"
	"testing"

	"github.com/maxxlamenaace/roomio-be/internal/database"
)

// newTestDB opens a migrated in-memory database for a test.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
