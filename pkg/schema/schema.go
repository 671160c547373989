// Package schema declares column layouts for delimited files.
//
// Layouts are declared, never inferred: a YAML document names each column
// and its type, and the convert/load surfaces consume the declaration. A
// fallback all-string layout can be generated from a header or a width.
package schema

import "fmt"

// Type names the declared value type of a column.
type Type string

const (
	TypeString   Type = "string"
	TypeInt      Type = "int"
	TypeUint     Type = "uint"
	TypeFloat    Type = "float"
	TypeBool     Type = "bool"
	TypeDate     Type = "date"
	TypeDateTime Type = "datetime"
)

// Valid reports whether t names a known column type.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeInt, TypeUint, TypeFloat, TypeBool, TypeDate, TypeDateTime:
		return true
	}
	return false
}

// Column declares one column of a delimited file.
type Column struct {
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`
}

// Schema declares the columns of a delimited file in order.
type Schema struct {
	Columns []Column `yaml:"columns"`
}

// Validate checks the schema for use: at least one column, every name
// non-empty and unique, every type known.
func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("schema is nil")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("column %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name: %s", c.Name)
		}
		seen[c.Name] = true
		if !c.Type.Valid() {
			return fmt.Errorf("column %s has unknown type %q", c.Name, c.Type)
		}
	}
	return nil
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.Columns) }

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1 when the
// schema has no column by that name.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FromNames builds an all-string schema with the given column names.
// Empty names are replaced positionally with c0, c1, and so on.
func FromNames(names []string) *Schema {
	cols := make([]Column, len(names))
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		cols[i] = Column{Name: name, Type: TypeString}
	}
	return &Schema{Columns: cols}
}

// Strings builds an all-string schema of width n with generated names.
func Strings(n int) *Schema {
	return FromNames(make([]string, n))
}
