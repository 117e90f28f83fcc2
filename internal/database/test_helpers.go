package database

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a throwaway SQLite database in the test's temp
// directory. The schema is created by NewDB the same way production SQLite
// deployments get it.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	config := Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := NewDB(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}
