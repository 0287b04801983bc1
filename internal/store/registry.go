package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anakievah/pdb/internal/table"
)

// tableDocument is the per-table entry of the schema document.
type tableDocument struct {
	Columns table.Schema `json:"columns"`
}

// LoadRegistry loads the schema document.
// If the document doesn't exist, returns an empty registry.
func (s *Store) LoadRegistry() (table.Registry, error) {
	data, err := os.ReadFile(s.metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return table.Registry{}, nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return table.Registry{}, nil
	}

	var doc map[string]tableDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCorruptData, s.metaPath, err)
	}

	reg := make(table.Registry, len(doc))
	for name, entry := range doc {
		if len(entry.Columns) == 0 || entry.Columns[0].Name != table.IDColumn {
			return nil, fmt.Errorf("%w: table %q in %s has no %s column", ErrCorruptData, name, s.metaPath, table.IDColumn)
		}
		reg[name] = entry.Columns
	}

	return reg, nil
}

// SaveRegistry overwrites the schema document.
func (s *Store) SaveRegistry(reg table.Registry) error {
	doc := make(map[string]tableDocument, len(reg))
	for name, schema := range reg {
		doc[name] = tableDocument{Columns: schema}
	}

	data, err := marshalDocument(doc)
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if err := writeFileAtomic(s.metaPath, data); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}

	return nil
}

// marshalDocument encodes v as indented JSON without HTML escaping.
func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
