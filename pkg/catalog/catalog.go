// Package catalog provides table metadata lookup for the analyzer. Providers
// answer whether a named object exists and what shape it has; they never store
// anything on behalf of the analyzer.
package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a catalog object does not exist.
var ErrNotFound = errors.New("catalog object not found")

// Column describes one column of a table.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Table describes a catalog table or persisted view.
type Table struct {
	Schema  string   `yaml:"schema"`
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// FullName returns the dotted name of the table.
func (t *Table) FullName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Catalog supplies table metadata. Lookups are read-only and safe for
// concurrent use. A lookup miss returns ErrNotFound; any other error means
// the provider itself failed.
type Catalog interface {
	// Table returns metadata for schema.name. An empty schema means the
	// provider's default schema.
	Table(ctx context.Context, schema, name string) (*Table, error)
}

// SplitName splits a possibly qualified dotted name into schema and table.
func SplitName(name string) (schema, table string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
