package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/query/indexing"
	"github.com/leengari/memstore/internal/query/predicate"
	"github.com/leengari/memstore/internal/storage/manager"
)

// Options configures an Engine
type Options struct {
	// SnapshotPath is used by Save and Load when they are called with an empty path
	SnapshotPath string
	// Indexes are rebuilt after every successful Load
	Indexes indexing.Spec
}

// Engine is the entry point the outer layers (HTTP, shell) use.
// It guards the store with one lock: mutations are exclusive, reads share.
// Every mutation is reported to the registered observers.
type Engine struct {
	mu        sync.RWMutex
	saveMu    sync.Mutex // serializes writers of the snapshot file
	store     *manager.Manager
	opts      Options
	observers []Observer
}

// TableInfo describes a table without exposing it
type TableInfo struct {
	Database  string          `json:"database"`
	Name      string          `json:"name"`
	Columns   []schema.Column `json:"columns"`
	Indexes   []string        `json:"indexes"`
	Records   int             `json:"records"`
	CreatedAt time.Time       `json:"created_at"`
}

// New creates a new Engine instance around store
func New(store *manager.Manager, opts Options) *Engine {
	if store == nil {
		store = manager.New()
	}
	return &Engine{
		store:     store,
		opts:      opts,
		observers: make([]Observer, 0),
	}
}

// SnapshotPath returns the default snapshot location
func (e *Engine) SnapshotPath() string {
	return e.opts.SnapshotPath
}

// write runs fn under the exclusive lock and then notifies observers
func (e *Engine) write(ev *Event, fn func() error) error {
	e.mu.Lock()
	err := fn()
	e.mu.Unlock()

	ev.Err = err
	e.notify(*ev)
	return err
}

func (e *Engine) table(db, table string) (*schema.Table, error) {
	d, err := e.store.GetDatabase(db)
	if err != nil {
		return nil, err
	}
	return d.GetTable(table)
}

// ListDatabases returns all database names
func (e *Engine) ListDatabases() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.DatabaseNames()
}

// CreateDatabase creates an empty database
func (e *Engine) CreateDatabase(name string) error {
	ev := &Event{Type: EventDatabaseCreated, Database: name}
	return e.write(ev, func() error {
		_, err := e.store.CreateDatabase(name)
		return err
	})
}

// DropDatabase removes a database with all of its tables
func (e *Engine) DropDatabase(name string) error {
	ev := &Event{Type: EventDatabaseDropped, Database: name}
	return e.write(ev, func() error {
		return e.store.DropDatabase(name)
	})
}

// ListTables returns the table names of a database
func (e *Engine) ListTables(db string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	d, err := e.store.GetDatabase(db)
	if err != nil {
		return nil, err
	}
	return d.TableNames(), nil
}

// CreateTable creates an empty table with the given schema
func (e *Engine) CreateTable(db, table string, columns []schema.Column) error {
	ev := &Event{Type: EventTableCreated, Database: db, Table: table}
	return e.write(ev, func() error {
		d, err := e.store.GetDatabase(db)
		if err != nil {
			return err
		}
		_, err = d.CreateTable(table, columns)
		return err
	})
}

// DropTable removes a table with its records and indexes
func (e *Engine) DropTable(db, table string) error {
	ev := &Event{Type: EventTableDropped, Database: db, Table: table}
	return e.write(ev, func() error {
		d, err := e.store.GetDatabase(db)
		if err != nil {
			return err
		}
		return d.DropTable(table)
	})
}

// DescribeTable returns schema, indexes and size of a table
func (e *Engine) DescribeTable(db, table string) (TableInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return TableInfo{}, err
	}

	columns := make([]schema.Column, len(t.Schema.Columns))
	copy(columns, t.Schema.Columns)
	return TableInfo{
		Database:  db,
		Name:      t.Name,
		Columns:   columns,
		Indexes:   t.IndexedColumns(),
		Records:   t.Len(),
		CreatedAt: t.CreatedAt,
	}, nil
}

// ColumnKinds returns column → kind for a table, used to decode request payloads
func (e *Engine) ColumnKinds(db, table string) (map[string]data.Kind, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return nil, err
	}
	return t.Schema.Kinds(), nil
}

// Insert adds a record
func (e *Engine) Insert(db, table string, values map[string]data.Value) (*data.Record, error) {
	var rec *data.Record
	ev := &Event{Type: EventRecordInserted, Database: db, Table: table}
	err := e.write(ev, func() error {
		t, err := e.table(db, table)
		if err != nil {
			return err
		}
		rec, err = t.Insert(values)
		if err == nil {
			ev.Data = rec.ID
		}
		return err
	})
	return rec, err
}

// Update merges values into an existing record
func (e *Engine) Update(db, table, id string, values map[string]data.Value) (*data.Record, error) {
	var rec *data.Record
	ev := &Event{Type: EventRecordUpdated, Database: db, Table: table, Data: id}
	err := e.write(ev, func() error {
		t, err := e.table(db, table)
		if err != nil {
			return err
		}
		rec, err = t.Update(id, values)
		return err
	})
	return rec, err
}

// Delete removes a record
func (e *Engine) Delete(db, table, id string) error {
	ev := &Event{Type: EventRecordDeleted, Database: db, Table: table, Data: id}
	return e.write(ev, func() error {
		t, err := e.table(db, table)
		if err != nil {
			return err
		}
		return t.Delete(id)
	})
}

// Get returns one record by identity
func (e *Engine) Get(db, table, id string) (*data.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return nil, err
	}
	return t.Get(id)
}

// SelectAll returns every record of a table in insertion order
func (e *Engine) SelectAll(db, table string) ([]*data.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return nil, err
	}
	return t.SelectAll(), nil
}

// FilterEquals returns records equal to every condition
func (e *Engine) FilterEquals(db, table string, conditions map[string]data.Value) ([]*data.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return nil, err
	}
	return t.FilterEquals(conditions), nil
}

// SelectWhere runs the extended query
func (e *Engine) SelectWhere(db, table string, q predicate.Query) ([]*data.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return nil, err
	}
	return t.SelectWhere(q)
}

// CreateIndex builds (or rebuilds) an index on column
func (e *Engine) CreateIndex(db, table, column string) error {
	ev := &Event{Type: EventIndexCreated, Database: db, Table: table, Data: column}
	return e.write(ev, func() error {
		t, err := e.table(db, table)
		if err != nil {
			return err
		}
		return t.CreateIndex(column)
	})
}

// DropIndex removes the index on column
func (e *Engine) DropIndex(db, table, column string) error {
	ev := &Event{Type: EventIndexDropped, Database: db, Table: table, Data: column}
	return e.write(ev, func() error {
		t, err := e.table(db, table)
		if err != nil {
			return err
		}
		return t.DropIndex(column)
	})
}

// SelectByIndex looks records up through the index on column
func (e *Engine) SelectByIndex(db, table, column string, value data.Value) ([]*data.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.table(db, table)
	if err != nil {
		return nil, err
	}
	return t.SelectByIndex(column, value)
}

func (e *Engine) resolvePath(path string) (string, error) {
	if path == "" {
		path = e.opts.SnapshotPath
	}
	if path == "" {
		return "", fmt.Errorf("no snapshot path given and none configured")
	}
	return path, nil
}

// Save writes the whole store to path (or the configured snapshot path)
func (e *Engine) Save(path string) (string, error) {
	path, err := e.resolvePath(path)
	if err != nil {
		return "", err
	}

	e.saveMu.Lock()
	e.mu.RLock()
	err = e.store.SaveSnapshot(path)
	e.mu.RUnlock()
	e.saveMu.Unlock()

	e.notify(Event{Type: EventSnapshotSaved, Data: path, Err: err})
	return path, err
}

// Load replaces the whole store with the snapshot at path (or the configured
// snapshot path) and rebuilds the configured indexes. On failure the current
// store is kept.
func (e *Engine) Load(path string) (string, error) {
	path, err := e.resolvePath(path)
	if err != nil {
		return "", err
	}

	ev := &Event{Type: EventSnapshotLoaded, Data: path}
	err = e.write(ev, func() error {
		fresh := manager.New()
		if err := fresh.LoadSnapshot(path); err != nil {
			return err
		}
		if err := indexing.Rebuild(fresh, e.opts.Indexes); err != nil {
			return fmt.Errorf("failed to rebuild indexes after load: %w", err)
		}
		e.store = fresh
		return nil
	})
	return path, err
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.OpID = uuid.NewString()
	event.Timestamp = time.Now()

	e.mu.RLock()
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.mu.RUnlock()

	for _, observer := range observers {
		observer.OnEvent(event)
	}
}
