package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk layout of a YAML schema file:
//
//	default_schema: main
//	tables:
//	  - name: orders
//	    schema: main
//	    columns:
//	      - {name: id, type: integer}
type schemaFile struct {
	DefaultSchema string   `yaml:"default_schema"`
	Tables        []*Table `yaml:"tables"`
}

// LoadFile loads a YAML schema file into an in-memory catalog.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses YAML schema file contents into an in-memory catalog.
func ParseFile(data []byte) (*Memory, error) {
	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	m := NewMemory(sf.DefaultSchema)
	for _, t := range sf.Tables {
		m.Add(t)
	}
	return m, nil
}
