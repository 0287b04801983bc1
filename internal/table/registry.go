package table

import (
	"fmt"
	"sort"
)

// Registry maps table names to their schemas.
//
// Write operations never modify the registry they are given; they return an
// updated copy which the caller persists and adopts.
type Registry map[string]Schema

// Clone returns a copy of the registry. Schemas are shared since they are
// never mutated after creation.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for name, s := range r {
		out[name] = s
	}
	return out
}

// ListTables returns the table names sorted lexicographically.
func ListTables(reg Registry) []string {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateTable adds a table built from "name:type" column specs. The implicit
// ID:int column is prepended.
func CreateTable(reg Registry, name string, specs []string) (Registry, Schema, error) {
	if !ValidIdentifier(name) {
		return nil, nil, fmt.Errorf("%w: table name %q is not a valid identifier", ErrInvalidSchema, name)
	}
	if _, exists := reg[name]; exists {
		return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateTable, name)
	}

	schema := Schema{{Name: IDColumn, Type: TypeInt}}
	seen := map[string]bool{IDColumn: true}
	for _, spec := range specs {
		col, err := ParseColumnSpec(spec)
		if err != nil {
			return nil, nil, err
		}
		if seen[col.Name] {
			if col.Name == IDColumn {
				return nil, nil, fmt.Errorf("%w: column %s is added automatically", ErrInvalidSchema, IDColumn)
			}
			return nil, nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, col.Name)
		}
		seen[col.Name] = true
		schema = append(schema, col)
	}

	out := reg.Clone()
	out[name] = schema
	return out, schema, nil
}

// DropTable removes a table's schema. Deleting the row document is left to
// the caller.
func DropTable(reg Registry, name string) (Registry, error) {
	if _, ok := reg[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	out := reg.Clone()
	delete(out, name)
	return out, nil
}

// GetSchema returns the schema of a table.
func GetSchema(reg Registry, name string) (Schema, error) {
	s, ok := reg[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return s, nil
}
