// Package table defines table schemas, typed records and the operations on
// the schema registry.
package table

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ColumnType represents the data type of a column.
type ColumnType string

const (
	TypeInt  ColumnType = "int"
	TypeStr  ColumnType = "str"
	TypeBool ColumnType = "bool"
)

// validColumnTypes is the set of recognized column types.
var validColumnTypes = map[ColumnType]bool{
	TypeInt:  true,
	TypeStr:  true,
	TypeBool: true,
}

// IDColumn is the implicit auto-increment column every schema starts with.
const IDColumn = "ID"

// validIdentifier matches valid table and column names (alphanumeric + underscore, must start with letter or underscore).
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdentifier reports whether name can be used as a table or column name.
func ValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ParseColumnType parses a type name such as "int".
func ParseColumnType(s string) (ColumnType, error) {
	t := ColumnType(s)
	if !validColumnTypes[t] {
		return "", fmt.Errorf("%w: unsupported column type %q (valid: int, str, bool)", ErrInvalidSchema, s)
	}
	return t, nil
}

// Column defines a single column in a schema.
type Column struct {
	Name string
	Type ColumnType
}

// String renders the column as "name:type".
func (c Column) String() string {
	return c.Name + ":" + string(c.Type)
}

// MarshalJSON encodes the column as a ["name", "type"] pair.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.Name, string(c.Type)})
}

// UnmarshalJSON decodes a ["name", "type"] pair.
func (c *Column) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("column must be a [name, type] pair, got %d elements", len(pair))
	}
	t, err := ParseColumnType(pair[1])
	if err != nil {
		return err
	}
	c.Name = pair[0]
	c.Type = t
	return nil
}

// Schema is the ordered column list of one table. The first column is
// always ID:int.
type Schema []Column

// DataColumns returns the columns supplied by the caller on insert (everything after ID).
func (s Schema) DataColumns() []Column {
	if len(s) == 0 {
		return nil
	}
	return s[1:]
}

// Lookup returns the column with the given name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// String renders the schema as "ID:int, name:str, ...".
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// ParseColumnSpec parses a "name:type" column specification.
func ParseColumnSpec(spec string) (Column, error) {
	name, typeName, ok := strings.Cut(spec, ":")
	if !ok {
		return Column{}, fmt.Errorf("%w: column %q has no type (expected name:type)", ErrInvalidSchema, spec)
	}
	name = strings.TrimSpace(name)
	typeName = strings.TrimSpace(typeName)

	if !ValidIdentifier(name) {
		return Column{}, fmt.Errorf("%w: column name %q is not a valid identifier", ErrInvalidSchema, name)
	}

	t, err := ParseColumnType(typeName)
	if err != nil {
		return Column{}, err
	}
	return Column{Name: name, Type: t}, nil
}

// Record represents a single row: column name to typed value (int64, string or bool).
type Record map[string]any

// Clone returns a shallow copy of the record. Values are scalars, so this is
// a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's identifier.
func (r Record) ID() (int64, bool) {
	id, ok := normalize(r[IDColumn]).(int64)
	return id, ok
}

// CloneRecords deep-copies a row sequence.
func CloneRecords(rows []Record) []Record {
	if rows == nil {
		return nil
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
