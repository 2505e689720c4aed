// Package config provides configuration management for the lumin CLI and
// server.
package config

// Config holds all configuration options.
type Config struct {
	Dialect      string        `koanf:"dialect"`
	User         string        `koanf:"user"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Catalog      CatalogConfig `koanf:"catalog"`
	Audit        AuditConfig   `koanf:"audit"`
	Server       ServerConfig  `koanf:"server"`
	Authz        AuthzConfig   `koanf:"authz"`
}

// CatalogConfig selects the metadata provider the analyzer resolves table
// references against.
type CatalogConfig struct {
	// Driver is one of "file", "sqlite", "duckdb", "postgres".
	Driver string `koanf:"driver"`
	// DSN is the connection string for database-backed drivers.
	DSN string `koanf:"dsn"`
	// SchemaFile is the YAML schema file path for the "file" driver.
	SchemaFile string `koanf:"schema_file"`
	// DefaultSchema qualifies unqualified table references. Empty means the
	// driver's own default ("main" for DuckDB/SQLite, "public" for Postgres).
	DefaultSchema string `koanf:"default_schema"`
}

// AuditConfig controls persistence of analysis outcomes.
type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// AuthzConfig controls privilege request collection.
type AuthzConfig struct {
	Enabled    bool   `koanf:"enabled"`
	ServerName string `koanf:"server_name"`
}

// Default configuration values.
const (
	DefaultDialect   = "ansi"
	DefaultAuditPath = ".lumin/audit.db"
	DefaultPort      = 8686
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=plain
)
