package schema

import (
	"fmt"
	"strings"

	"github.com/leengari/memstore/internal/domain/data"
)

type ColumnType string

const (
	ColumnTypeInt   ColumnType = "INT"
	ColumnTypeFloat ColumnType = "FLOAT"
	ColumnTypeText  ColumnType = "TEXT"
	ColumnTypeBool  ColumnType = "BOOL"
)

// ParseColumnType accepts a type tag case-insensitively. STRING is an alias of TEXT.
func ParseColumnType(tag string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "INT", "INTEGER":
		return ColumnTypeInt, nil
	case "FLOAT":
		return ColumnTypeFloat, nil
	case "TEXT", "STRING":
		return ColumnTypeText, nil
	case "BOOL", "BOOLEAN":
		return ColumnTypeBool, nil
	}
	return "", fmt.Errorf("unknown column type %q", tag)
}

// Kind maps the declared type to the value kind it accepts
func (t ColumnType) Kind() data.Kind {
	switch t {
	case ColumnTypeInt:
		return data.KindInt
	case ColumnTypeFloat:
		return data.KindFloat
	case ColumnTypeText:
		return data.KindString
	case ColumnTypeBool:
		return data.KindBool
	}
	return data.KindInvalid
}

type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// TableSchema is the ordered, immutable column list of a table
type TableSchema struct {
	TableName string
	Columns   []Column
	byName    map[string]ColumnType
}

// NewTableSchema validates columns: at least one, unique non-empty names,
// known types.
func NewTableSchema(tableName string, columns []Column) (*TableSchema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s: schema must declare at least one column", tableName)
	}

	s := &TableSchema{
		TableName: tableName,
		Columns:   make([]Column, 0, len(columns)),
		byName:    make(map[string]ColumnType, len(columns)),
	}
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("table %s: column name must not be empty", tableName)
		}
		if _, dup := s.byName[col.Name]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", tableName, col.Name)
		}
		typ, err := ParseColumnType(string(col.Type))
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", tableName, col.Name, err)
		}
		s.Columns = append(s.Columns, Column{Name: col.Name, Type: typ})
		s.byName[col.Name] = typ
	}
	return s, nil
}

// Lookup returns the declared type of a column
func (s *TableSchema) Lookup(name string) (ColumnType, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Kinds returns column → value kind, used by the query builder and decoders
func (s *TableSchema) Kinds() map[string]data.Kind {
	kinds := make(map[string]data.Kind, len(s.Columns))
	for _, col := range s.Columns {
		kinds[col.Name] = col.Type.Kind()
	}
	return kinds
}
