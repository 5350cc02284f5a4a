package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenMemoryDB opens an in-memory sqlite database with the given schema
// applied, it is closed when the test finishes.
func OpenMemoryDB(t testing.TB, schema string) *sql.DB {
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is its own database
	database.SetMaxOpenConns(1)

	if schema != "" {
		_, err = database.Exec(schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
