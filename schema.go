package xlbridge

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TableDef describes one exported table.
type TableDef struct {
	Name       string   `yaml:"name"`
	Index      string   `yaml:"index"`
	IndexKind  string   `yaml:"index_kind"`
	InputFiles []string `yaml:"input_files"`
	Select     string   `yaml:"select,omitempty"`
}

type tableDefsFile struct {
	Tables []TableDef `yaml:"tables"`
}

// ParseTableDefs decodes and validates a YAML table definition document.
func ParseTableDefs(data []byte) ([]TableDef, error) {
	var doc tableDefsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse table definitions: %w", err)
	}
	seen := make(map[string]bool, len(doc.Tables))
	for i, t := range doc.Tables {
		switch {
		case t.Name == "":
			return nil, fmt.Errorf("table %d: missing name", i)
		case seen[t.Name]:
			return nil, fmt.Errorf("table %q defined twice", t.Name)
		case t.Index == "":
			return nil, fmt.Errorf("table %q: missing index field", t.Name)
		case len(t.InputFiles) == 0:
			return nil, fmt.Errorf("table %q: missing input_files", t.Name)
		}
		if _, err := t.KeyField(); err != nil {
			return nil, err
		}
		seen[t.Name] = true
	}
	return doc.Tables, nil
}

// LoadTableDefs reads table definitions from a YAML file.
func LoadTableDefs(path string) ([]TableDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table definitions: %w", err)
	}
	return ParseTableDefs(data)
}

// FindTable returns the definition with the given name.
func FindTable(defs []TableDef, name string) (TableDef, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return TableDef{}, false
}

// KeyField returns the table's key identifier. An unset kind means string.
func (t TableDef) KeyField() (KeyField, error) {
	kind := KindString
	if t.IndexKind != "" {
		k, err := ParseKind(t.IndexKind)
		if err != nil {
			return KeyField{}, fmt.Errorf("table %q: %w", t.Name, err)
		}
		if !k.Keyable() {
			return KeyField{}, fmt.Errorf("table %q: index kind %s cannot be a key", t.Name, k)
		}
		kind = k
	}
	return KeyField{Name: t.Index, Kind: kind}, nil
}

// RecordDir is the directory per-record files of the table live in.
func (t TableDef) RecordDir(inputDataDir string) string {
	return filepath.Join(inputDataDir, t.InputFiles[0])
}
