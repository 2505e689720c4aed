package catalog

import (
	"database/sql"
	"fmt"

	// DuckDB database/sql driver.
	_ "github.com/marcboeker/go-duckdb"
)

// OpenDuckDB opens a DuckDB database and returns a catalog over its
// information_schema. An empty path opens an in-memory database.
func OpenDuckDB(path string) (*InfoSchema, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping duckdb database: %w", err)
	}
	return NewInfoSchema(db, "main"), nil
}
