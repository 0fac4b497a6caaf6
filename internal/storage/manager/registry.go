package manager

import (
	"io"
	"sort"

	"github.com/leengari/memstore/internal/domain/errors"
	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/storage"
	"github.com/leengari/memstore/internal/storage/writer"
)

// Manager is the top-level store: it owns every database and can dump or
// restore the whole tree as a snapshot.
//
// Manager is not safe for concurrent use; engine.Engine adds the locking.
type Manager struct {
	databases map[string]*schema.Database
}

// New creates an empty store
func New() *Manager {
	return &Manager{
		databases: make(map[string]*schema.Database),
	}
}

// CreateDatabase creates a new, empty database
func (m *Manager) CreateDatabase(name string) (*schema.Database, error) {
	if _, ok := m.databases[name]; ok {
		return nil, &errors.AlreadyExistsError{Entity: "database", Name: name}
	}
	if name == "" {
		return nil, errors.NewSchemaViolation("", "", "database name must not be empty")
	}

	db := schema.NewDatabase(name)
	m.databases[name] = db
	return db, nil
}

// GetDatabase returns the database with the given name
func (m *Manager) GetDatabase(name string) (*schema.Database, error) {
	db, ok := m.databases[name]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "database", Name: name}
	}
	return db, nil
}

// DropDatabase removes a database and everything it owns
func (m *Manager) DropDatabase(name string) error {
	if _, ok := m.databases[name]; !ok {
		return &errors.NotFoundError{Entity: "database", Name: name}
	}
	delete(m.databases, name)
	return nil
}

// DatabaseNames returns the database names, sorted
func (m *Manager) DatabaseNames() []string {
	names := make([]string, 0, len(m.databases))
	for name := range m.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveSnapshot writes every database, table and record to path.
// The file is replaced atomically; in-memory state is not touched.
func (m *Manager) SaveSnapshot(path string) error {
	return writer.SaveFile(path, m.databases)
}

// WriteSnapshot streams the snapshot to w
func (m *Manager) WriteSnapshot(w io.Writer) error {
	return writer.WriteSnapshot(w, m.databases)
}

// LoadSnapshot replaces the whole in-memory state with the snapshot at path.
// On any error the current state is left as it was. Indexes are not part of
// snapshots: after a load no table has an index until CreateIndex is called
// again (see indexing.Rebuild).
func (m *Manager) LoadSnapshot(path string) error {
	databases, err := storage.LoadFile(path)
	if err != nil {
		return err
	}
	m.databases = databases
	return nil
}

// ReadSnapshot is LoadSnapshot for an arbitrary reader
func (m *Manager) ReadSnapshot(r io.Reader) error {
	databases, err := storage.ReadSnapshot(r)
	if err != nil {
		return err
	}
	m.databases = databases
	return nil
}
