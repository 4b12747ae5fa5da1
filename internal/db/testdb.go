package db

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
)

var testDBCounter atomic.Int64

// NewTestDB creates a fresh in-memory SQLite database with all migrations
// applied. Each call gets its own named shared-cache database so that every
// pooled connection sees the same data.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	database, err := Open(name)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// A single connection sidesteps shared-cache lock contention.
	database.SetMaxOpenConns(1)

	if err := Migrate(database); err != nil {
		database.Close()
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() { database.Close() })

	return database
}
