package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// InfoSchema is a catalog backed by a live database connection, answering
// lookups from information_schema. It works for any engine with a standard
// information_schema (DuckDB, PostgreSQL).
type InfoSchema struct {
	db            *sql.DB
	defaultSchema string
}

// NewInfoSchema wraps an open database handle. defaultSchema is used for
// unqualified lookups ("main" for DuckDB, "public" for PostgreSQL).
func NewInfoSchema(db *sql.DB, defaultSchema string) *InfoSchema {
	return &InfoSchema{db: db, defaultSchema: defaultSchema}
}

// Table returns metadata for schema.name, or ErrNotFound.
func (c *InfoSchema) Table(ctx context.Context, schema, name string) (*Table, error) {
	if schema == "" {
		schema = c.defaultSchema
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query information_schema: %w", err)
	}
	defer rows.Close()

	t := &Table{Schema: schema, Name: name}
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
func (c *InfoSchema) Close() error {
	return c.db.Close()
}
