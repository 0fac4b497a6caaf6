package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/leengari/memstore/internal/domain/errors"
	"github.com/leengari/memstore/internal/domain/schema"
)

// LoadDatabase rebuilds a database and all of its tables from a snapshot
func LoadDatabase(key string, ds DatabaseSnapshot) (*schema.Database, error) {
	if ds.Name == "" {
		return nil, fmt.Errorf("database %q has no name", key)
	}
	if ds.Name != key {
		return nil, fmt.Errorf("database key %q does not match name %q", key, ds.Name)
	}
	if ds.Tables == nil {
		return nil, fmt.Errorf("database %s has no tables object", ds.Name)
	}

	db := schema.NewDatabase(ds.Name)
	for name, ts := range ds.Tables {
		table, err := LoadTable(name, ts)
		if err != nil {
			return nil, fmt.Errorf("database %s: %w", ds.Name, err)
		}
		db.Tables[name] = table
	}
	return db, nil
}

// ReadSnapshot decodes a whole-store snapshot from r. Any structural problem
// is reported as a CorruptSnapshotError; nothing is returned on failure.
func ReadSnapshot(r io.Reader) (map[string]*schema.Database, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, &errors.CorruptSnapshotError{Reason: "invalid JSON", Err: err}
	}
	if snap == nil {
		return nil, &errors.CorruptSnapshotError{Reason: "top level must be an object"}
	}
	if dec.More() {
		return nil, &errors.CorruptSnapshotError{Reason: "trailing data after snapshot"}
	}

	databases := make(map[string]*schema.Database, len(snap))
	for name, ds := range snap {
		db, err := LoadDatabase(name, ds)
		if err != nil {
			return nil, &errors.CorruptSnapshotError{Err: err}
		}
		databases[name] = db
	}
	return databases, nil
}

// LoadFile reads a snapshot file. A missing or unreadable file is returned
// as the underlying I/O error, not as a corrupt snapshot.
func LoadFile(path string) (map[string]*schema.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	databases, err := ReadSnapshot(f)
	if err != nil {
		if ce, ok := err.(*errors.CorruptSnapshotError); ok {
			ce.Path = path
		}
		return nil, err
	}
	return databases, nil
}
