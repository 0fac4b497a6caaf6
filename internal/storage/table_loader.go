package storage

import (
	"fmt"
	"sort"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/domain/schema"
)

// LoadTable rebuilds a table from its snapshot. Records are restored in
// (created_at, id) order so scans after a load are deterministic. The table
// comes back without indexes.
func LoadTable(key string, ts TableSnapshot) (*schema.Table, error) {
	if ts.Name == "" {
		return nil, fmt.Errorf("table %q has no name", key)
	}
	if ts.Name != key {
		return nil, fmt.Errorf("table key %q does not match name %q", key, ts.Name)
	}

	columns := make([]schema.Column, 0, len(ts.Schema))
	for _, c := range ts.Schema {
		columns = append(columns, schema.Column{Name: c.Name, Type: schema.ColumnType(c.Type)})
	}
	tableSchema, err := schema.NewTableSchema(ts.Name, columns)
	if err != nil {
		return nil, err
	}

	kinds := tableSchema.Kinds()
	records := make([]*data.Record, 0, len(ts.Records))
	for id, raw := range ts.Records {
		rec, err := data.UnmarshalRecord(raw, kinds)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", ts.Name, err)
		}
		if rec.ID != id {
			return nil, fmt.Errorf("table %s: record key %q does not match id %q", ts.Name, id, rec.ID)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	table := schema.NewTable(ts.Name, tableSchema)
	for _, rec := range records {
		if err := table.Restore(rec); err != nil {
			return nil, err
		}
	}
	return table, nil
}
