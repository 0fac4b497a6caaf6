package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/storage"
)

// EncodeTable converts a table into its snapshot form (indexes excluded)
func EncodeTable(t *schema.Table) (storage.TableSnapshot, error) {
	ts := storage.TableSnapshot{
		Name:    t.Name,
		Schema:  make([]storage.ColumnMeta, len(t.Schema.Columns)),
		Records: make(map[string]json.RawMessage, t.Len()),
	}

	for i, col := range t.Schema.Columns {
		ts.Schema[i] = storage.ColumnMeta{Name: col.Name, Type: string(col.Type)}
	}

	for _, rec := range t.SelectAll() {
		raw, err := rec.MarshalJSON()
		if err != nil {
			return storage.TableSnapshot{}, fmt.Errorf("failed to marshal record %s of table %s: %w", rec.ID, t.Name, err)
		}
		ts.Records[rec.ID] = raw
	}
	return ts, nil
}

// EncodeDatabase converts a database and all of its tables
func EncodeDatabase(db *schema.Database) (storage.DatabaseSnapshot, error) {
	ds := storage.DatabaseSnapshot{
		Name:   db.Name,
		Tables: make(map[string]storage.TableSnapshot, len(db.Tables)),
	}
	for name, table := range db.Tables {
		ts, err := EncodeTable(table)
		if err != nil {
			return storage.DatabaseSnapshot{}, fmt.Errorf("database %s: %w", db.Name, err)
		}
		ds.Tables[name] = ts
	}
	return ds, nil
}

// Encode builds the whole-store snapshot document
func Encode(databases map[string]*schema.Database) (storage.Snapshot, error) {
	snap := make(storage.Snapshot, len(databases))
	for name, db := range databases {
		ds, err := EncodeDatabase(db)
		if err != nil {
			return nil, err
		}
		snap[name] = ds
	}
	return snap, nil
}

// WriteSnapshot writes the snapshot of databases to w as indented JSON
func WriteSnapshot(w io.Writer, databases map[string]*schema.Database) error {
	snap, err := Encode(databases)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// SaveFile writes the snapshot to path using temp + atomic rename.
// The temp file lives next to path so the rename never crosses filesystems.
func SaveFile(path string, databases map[string]*schema.Database) error {
	if path == "" {
		return fmt.Errorf("cannot save snapshot: missing path")
	}

	// 1. Ensure the parent directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	// 2. Write to temp
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}
	if err := WriteSnapshot(f, databases); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp snapshot file: %w", err)
	}

	// 3. Atomic replace
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s: %w", path, err)
	}
	return nil
}
