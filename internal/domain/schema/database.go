package schema

import (
	"sort"
	"time"

	"github.com/leengari/memstore/internal/domain/errors"
)

// Database is a named collection of tables
type Database struct {
	Name      string
	CreatedAt time.Time
	Tables    map[string]*Table
}

// NewDatabase creates an empty database
func NewDatabase(name string) *Database {
	return &Database{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Tables:    make(map[string]*Table),
	}
}

// CreateTable creates and stores an empty table
func (db *Database) CreateTable(name string, columns []Column) (*Table, error) {
	if _, exists := db.Tables[name]; exists {
		return nil, &errors.AlreadyExistsError{Entity: "table", Name: name, Parent: db.Name}
	}
	if name == "" {
		return nil, errors.NewSchemaViolation(name, "", "table name must not be empty")
	}

	s, err := NewTableSchema(name, columns)
	if err != nil {
		return nil, errors.NewSchemaViolation(name, "", err.Error())
	}

	table := NewTable(name, s)
	db.Tables[name] = table
	return table, nil
}

// GetTable returns the table with the given name
func (db *Database) GetTable(name string) (*Table, error) {
	table, ok := db.Tables[name]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "table", Name: name, Parent: db.Name}
	}
	return table, nil
}

// DropTable removes the table together with its records and indexes
func (db *Database) DropTable(name string) error {
	if _, ok := db.Tables[name]; !ok {
		return &errors.NotFoundError{Entity: "table", Name: name, Parent: db.Name}
	}
	delete(db.Tables, name)
	return nil
}

// TableNames returns the table names, sorted
func (db *Database) TableNames() []string {
	names := make([]string, 0, len(db.Tables))
	for name := range db.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
