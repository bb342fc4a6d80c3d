// Package testing provides test helpers shared across packages.
package testing

import (
	"database/sql"
	"testing"

	"github.com/aristath/fundnav/internal/clientdata"
	_ "github.com/mattn/go-sqlite3"
)

// NewMemoryDB opens a private in-memory SQLite database and applies schema.
// The pool is pinned to one connection because every :memory: connection is its own database.
func NewMemoryDB(t *testing.T, schema string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			t.Fatalf("Failed to apply schema: %v", err)
		}
	}
	return db
}

// NewClientDataRepo returns a repository over a fresh in-memory client_data schema
func NewClientDataRepo(t *testing.T) *clientdata.Repository {
	t.Helper()
	return clientdata.NewRepository(NewMemoryDB(t, clientdata.Schema))
}
