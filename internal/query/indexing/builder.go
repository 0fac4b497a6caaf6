package indexing

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/leengari/memstore/internal/domain/schema"
)

// Spec lists the columns to index: database → table → columns
type Spec map[string]map[string][]string

// DatabaseGetter is the part of the store Rebuild needs
type DatabaseGetter interface {
	GetDatabase(name string) (*schema.Database, error)
}

// BuildIndexes (re)creates an index for each column of table
func BuildIndexes(table *schema.Table, columns []string) error {
	for _, col := range columns {
		if err := table.CreateIndex(col); err != nil {
			return err
		}

		slog.Debug("index built",
			slog.String("table", table.Name),
			slog.String("column", col),
			slog.Int("rows", table.Len()))
	}
	return nil
}

// BuildDatabaseIndexes builds the indexes listed for each table of db.
// Tables named in tables but absent from db are skipped with a warning.
func BuildDatabaseIndexes(db *schema.Database, tables map[string][]string) error {
	for _, name := range sortedNames(tables) {
		table, ok := db.Tables[name]
		if !ok {
			slog.Warn("skipping indexes for missing table",
				slog.String("database", db.Name),
				slog.String("table", name))
			continue
		}
		if err := BuildIndexes(table, tables[name]); err != nil {
			return fmt.Errorf("failed to build indexes for table %s.%s: %w", db.Name, name, err)
		}
	}
	return nil
}

// Rebuild applies spec to the store, typically right after a snapshot load
// since snapshots never carry indexes. Databases missing from the store are
// skipped with a warning.
func Rebuild(store DatabaseGetter, spec Spec) error {
	for _, name := range sortedNames(spec) {
		db, err := store.GetDatabase(name)
		if err != nil {
			slog.Warn("skipping indexes for missing database", slog.String("database", name))
			continue
		}
		if err := BuildDatabaseIndexes(db, spec[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
