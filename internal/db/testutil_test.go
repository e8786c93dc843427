package db

import (
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the recordings
// schema migrated in, for tests that exercise RecordingRepository.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run recordings migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
