package catalog

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-memory catalog, used for tests and for schema files loaded
// from disk.
type Memory struct {
	mu            sync.RWMutex
	tables        map[string]*Table // "schema.name" (lowercased) -> table
	defaultSchema string
}

// NewMemory creates an empty in-memory catalog.
func NewMemory(defaultSchema string) *Memory {
	return &Memory{
		tables:        make(map[string]*Table),
		defaultSchema: defaultSchema,
	}
}

// Add registers a table. A table with an empty schema lands in the default
// schema; the stored copy carries the resolved schema so FullName is always
// qualified.
func (m *Memory) Add(t *Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Schema == "" {
		qualified := *t
		qualified.Schema = m.defaultSchema
		t = &qualified
	}
	m.tables[m.key(t.Schema, t.Name)] = t
}

// Table returns metadata for schema.name, or ErrNotFound.
func (m *Memory) Table(_ context.Context, schema, name string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if schema == "" {
		schema = m.defaultSchema
	}
	if t, ok := m.tables[m.key(schema, name)]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) key(schema, name string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(name)
}
