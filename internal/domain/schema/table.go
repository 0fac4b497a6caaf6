package schema

import (
	"sort"
	"time"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/domain/errors"
	"github.com/leengari/memstore/internal/query/predicate"
)

// Table represents a database table with its schema, records, and indexes.
//
// Records are owned by the table and keyed by identity; indexes only hold
// identities. Every mutating operation keeps all indexes consistent with the
// record it touches. A Table is not safe for concurrent use; callers that
// share one across goroutines serialize access themselves (see engine.Engine).
//
// Scans (SelectAll, FilterEquals, SelectWhere) return records in insertion order.
type Table struct {
	Name      string
	Schema    *TableSchema
	CreatedAt time.Time

	records map[string]*data.Record
	order   []string // record ids in insertion order
	nextSeq uint64
	indexes map[string]*data.Index
}

// NewTable creates an empty table. The schema must come from NewTableSchema.
func NewTable(name string, s *TableSchema) *Table {
	return &Table{
		Name:      name,
		Schema:    s,
		CreatedAt: time.Now().UTC(),
		records:   make(map[string]*data.Record),
		indexes:   make(map[string]*data.Index),
	}
}

// Len returns the number of live records
func (t *Table) Len() int {
	return len(t.records)
}

// Validate checks a complete value mapping against the schema:
// no undeclared columns, every declared column present, exact kinds.
func (t *Table) Validate(values map[string]data.Value) error {
	// 1. Undeclared columns
	for _, col := range sortedKeys(values) {
		if _, ok := t.Schema.Lookup(col); !ok {
			return errors.NewSchemaViolation(t.Name, col, "column not declared in schema")
		}
	}

	// 2. Presence and type, in declaration order
	for _, col := range t.Schema.Columns {
		val, exists := values[col.Name]
		if !exists {
			return errors.NewMissingColumn(t.Name, col.Name)
		}
		if val.Kind() != col.Type.Kind() {
			return errors.NewTypeMismatch(t.Name, col.Name, val.Interface(), string(col.Type), val.Kind().String())
		}
		if !val.Finite() {
			return errors.NewSchemaViolation(t.Name, col.Name, "non-finite float")
		}
	}
	return nil
}

// validatePartial checks the columns of a partial update
func (t *Table) validatePartial(values map[string]data.Value) error {
	for _, col := range sortedKeys(values) {
		typ, ok := t.Schema.Lookup(col)
		if !ok {
			return errors.NewSchemaViolation(t.Name, col, "column not declared in schema")
		}
		val := values[col]
		if val.Kind() != typ.Kind() {
			return errors.NewTypeMismatch(t.Name, col, val.Interface(), string(typ), val.Kind().String())
		}
		if !val.Finite() {
			return errors.NewSchemaViolation(t.Name, col, "non-finite float")
		}
	}
	return nil
}

// Insert validates values, stores a new record and adds it to every index.
// A validation failure leaves the table and its indexes untouched.
func (t *Table) Insert(values map[string]data.Value) (*data.Record, error) {
	if err := t.Validate(values); err != nil {
		return nil, err
	}

	rec := data.NewRecord(values)
	t.store(rec)
	return rec.Clone(), nil
}

// Restore stores a record that already carries its identity and timestamps,
// as read back from a snapshot. The values are validated like an insert.
func (t *Table) Restore(rec *data.Record) error {
	if err := t.Validate(rec.Values); err != nil {
		return err
	}
	if _, dup := t.records[rec.ID]; dup {
		return &errors.AlreadyExistsError{Entity: "record", Name: rec.ID, Parent: t.Name}
	}

	t.store(rec.Clone())
	return nil
}

func (t *Table) store(rec *data.Record) {
	t.nextSeq++
	rec.SetSeq(t.nextSeq)

	t.records[rec.ID] = rec
	t.order = append(t.order, rec.ID)

	for col, idx := range t.indexes {
		idx.Add(rec.Values[col], rec.ID)
	}
}

// Update merges newValues into the record with the given id. Only the
// supplied columns change. Indexes on changed columns move the id from the
// old value bucket to the new one.
func (t *Table) Update(id string, newValues map[string]data.Value) (*data.Record, error) {
	rec, ok := t.records[id]
	if !ok {
		return nil, t.recordNotFound(id)
	}
	if err := t.validatePartial(newValues); err != nil {
		return nil, err
	}

	previous := make(map[string]data.Value, len(t.indexes))
	for col := range t.indexes {
		previous[col] = rec.Values[col]
	}

	rec.Update(newValues)

	for col, idx := range t.indexes {
		if newVal, changed := newValues[col]; changed {
			idx.Move(previous[col], newVal, id)
		}
	}

	return rec.Clone(), nil
}

// Delete removes the record and its identity from every index
func (t *Table) Delete(id string) error {
	rec, ok := t.records[id]
	if !ok {
		return t.recordNotFound(id)
	}

	for col, idx := range t.indexes {
		idx.Remove(rec.Values[col], id)
	}

	delete(t.records, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the record with the given id
func (t *Table) Get(id string) (*data.Record, error) {
	rec, ok := t.records[id]
	if !ok {
		return nil, t.recordNotFound(id)
	}
	return rec.Clone(), nil
}

// SelectAll returns all records of the table
func (t *Table) SelectAll() []*data.Record {
	result := make([]*data.Record, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.records[id].Clone())
	}
	return result
}

// FilterEquals returns records whose values equal every condition exactly.
// Full scan; indexes are not consulted. A condition on an undeclared column
// matches nothing.
func (t *Table) FilterEquals(conditions map[string]data.Value) []*data.Record {
	var result []*data.Record
	for _, id := range t.order {
		rec := t.records[id]
		if matchesAll(rec, conditions) {
			result = append(result, rec.Clone())
		}
	}
	return result
}

func matchesAll(rec *data.Record, conditions map[string]data.Value) bool {
	for col, want := range conditions {
		got, ok := rec.Values[col]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// CreateIndex builds an index on column from the current records.
// An existing index on the same column is replaced.
func (t *Table) CreateIndex(column string) error {
	if _, ok := t.Schema.Lookup(column); !ok {
		return &errors.ColumnNotFoundError{TableName: t.Name, ColumnName: column}
	}

	idx := data.NewIndex(column)
	for _, id := range t.order {
		idx.Add(t.records[id].Values[column], id)
	}
	t.indexes[column] = idx
	return nil
}

// DropIndex removes the index on column
func (t *Table) DropIndex(column string) error {
	if _, ok := t.indexes[column]; !ok {
		return &errors.NoIndexError{TableName: t.Name, ColumnName: column}
	}
	delete(t.indexes, column)
	return nil
}

// HasIndex reports whether column is indexed
func (t *Table) HasIndex(column string) bool {
	_, ok := t.indexes[column]
	return ok
}

// IndexedColumns returns the indexed column names, sorted
func (t *Table) IndexedColumns() []string {
	cols := make([]string, 0, len(t.indexes))
	for col := range t.indexes {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// SelectByIndex returns the records whose column equals value, using the
// index on column. Cost is proportional to the bucket size, not the table.
// Results are in insertion order.
func (t *Table) SelectByIndex(column string, value data.Value) ([]*data.Record, error) {
	idx, ok := t.indexes[column]
	if !ok {
		return nil, &errors.NoIndexError{TableName: t.Name, ColumnName: column}
	}

	ids := idx.Lookup(value)
	result := make([]*data.Record, 0, len(ids))
	for _, id := range ids {
		result = append(result, t.records[id].Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq() < result[j].Seq()
	})
	return result, nil
}

// SelectWhere runs the extended query: OR-of-AND condition groups, optional
// stable ordering and limit. It always scans the whole table and never
// consults indexes.
func (t *Table) SelectWhere(q predicate.Query) ([]*data.Record, error) {
	if q.OrderBy != "" {
		if _, ok := t.Schema.Lookup(q.OrderBy); !ok {
			return nil, &errors.ColumnNotFoundError{TableName: t.Name, ColumnName: q.OrderBy}
		}
	}
	if q.Limit != nil && *q.Limit < 0 {
		return nil, errors.NewUnsupportedOperand("", "limit", *q.Limit, "limit must not be negative")
	}

	pred, err := predicate.Build(q.Groups, predicate.Schema{Table: t.Name, Kinds: t.Schema.Kinds()})
	if err != nil {
		return nil, err
	}

	// 1. Filter
	var result []*data.Record
	for _, id := range t.order {
		rec := t.records[id]
		if pred(rec) {
			result = append(result, rec.Clone())
		}
	}

	// 2. Order
	if q.OrderBy != "" {
		predicate.SortRecords(result, q.OrderBy, q.Descending)
	}

	// 3. Limit
	if q.Limit != nil && len(result) > *q.Limit {
		result = result[:*q.Limit]
	}

	return result, nil
}

func (t *Table) recordNotFound(id string) error {
	return &errors.NotFoundError{Entity: "record", Name: id, Parent: t.Name}
}

func sortedKeys(values map[string]data.Value) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
