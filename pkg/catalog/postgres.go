package catalog

import (
	"database/sql"
	"fmt"

	// PostgreSQL database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres opens a PostgreSQL connection and returns a catalog over its
// information_schema.
func OpenPostgres(dsn string) (*InfoSchema, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}
	return NewInfoSchema(db, "public"), nil
}
