package catalog

import "fmt"

// Options selects a catalog provider.
type Options struct {
	// Driver is one of "memory", "file", "sqlite", "duckdb", "postgres".
	Driver string
	// DSN is the connection string for database-backed drivers.
	DSN string
	// SchemaFile is the YAML schema file path for the "file" driver.
	SchemaFile string
	// DefaultSchema overrides the driver's default schema when non-empty.
	DefaultSchema string
}

// Open opens the catalog provider described by opts. The returned catalog
// may implement io.Closer; callers that opened a database-backed provider
// should close it when done.
func Open(opts Options) (Catalog, error) {
	switch opts.Driver {
	case "", "memory":
		schema := opts.DefaultSchema
		if schema == "" {
			schema = "main"
		}
		return NewMemory(schema), nil
	case "file":
		if opts.SchemaFile == "" {
			return nil, fmt.Errorf("catalog driver %q requires a schema file", opts.Driver)
		}
		return LoadFile(opts.SchemaFile)
	case "sqlite":
		return OpenSQLite(opts.DSN)
	case "duckdb":
		c, err := OpenDuckDB(opts.DSN)
		if err != nil {
			return nil, err
		}
		if opts.DefaultSchema != "" {
			c.defaultSchema = opts.DefaultSchema
		}
		return c, nil
	case "postgres":
		c, err := OpenPostgres(opts.DSN)
		if err != nil {
			return nil, err
		}
		if opts.DefaultSchema != "" {
			c.defaultSchema = opts.DefaultSchema
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", opts.Driver)
	}
}
