package storage

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the whole-store document: database name → database.
// It carries no version field; indexes are never part of it.
type Snapshot map[string]DatabaseSnapshot

type DatabaseSnapshot struct {
	Name   string                   `json:"name"`
	Tables map[string]TableSnapshot `json:"tables"`
}

type TableSnapshot struct {
	Name    string                     `json:"name"`
	Schema  []ColumnMeta               `json:"schema"`
	Records map[string]json.RawMessage `json:"records"` // id → record document
}

// ColumnMeta is one [name, type] pair of a table schema
type ColumnMeta struct {
	Name string
	Type string
}

// MarshalJSON writes the pair as a two-element array
func (c ColumnMeta) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.Name, c.Type})
}

// UnmarshalJSON reads a two-element [name, type] array
func (c *ColumnMeta) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("schema entry must be a [name, type] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("schema entry must have exactly 2 elements, got %d", len(pair))
	}
	c.Name, c.Type = pair[0], pair[1]
	return nil
}
