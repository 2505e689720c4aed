package catalog

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLite is a catalog backed by a SQLite database. SQLite has no
// information_schema, so lookups go through pragma_table_info.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database as a catalog. Use ":memory:" for an
// in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// NewSQLite wraps an already open SQLite handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Table returns metadata for name, or ErrNotFound. SQLite is single-schema;
// a non-empty schema other than "main" never matches.
func (c *SQLite) Table(ctx context.Context, schema, name string) (*Table, error) {
	if schema != "" && schema != "main" {
		return nil, ErrNotFound
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query table info: %w", err)
	}
	defer rows.Close()

	t := &Table{Schema: "main", Name: name}
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column rows: %w", err)
	}

	if len(t.Columns) == 0 {
		return nil, ErrNotFound
	}
	return t, nil
}

// Close closes the underlying database handle.
func (c *SQLite) Close() error {
	return c.db.Close()
}
