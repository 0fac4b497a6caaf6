package data

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// now is swapped out in tests that need deterministic clocks
var now = func() time.Time {
	// Round(0) strips the monotonic reading so timestamps survive a
	// snapshot round trip and compare equal with ==.
	return time.Now().UTC().Round(0)
}

// Record is a single versioned row.
// Key = column name, Value = cell value
type Record struct {
	ID        string
	Values    map[string]Value
	CreatedAt time.Time
	UpdatedAt time.Time

	// seq is the insertion sequence assigned by the owning table
	seq uint64
}

// NewRecord creates a record with a fresh identity.
// values must already be validated against the table schema.
func NewRecord(values map[string]Value) *Record {
	ts := now()
	return &Record{
		ID:        uuid.NewString(),
		Values:    copyValues(values),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Update merges newValues into the record (partial update) and refreshes
// UpdatedAt. UpdatedAt always moves strictly forward.
func (r *Record) Update(newValues map[string]Value) {
	for col, val := range newValues {
		r.Values[col] = val
	}

	ts := now()
	if !ts.After(r.UpdatedAt) {
		ts = r.UpdatedAt.Add(time.Nanosecond)
	}
	r.UpdatedAt = ts
}

// Clone creates a deep copy of the record to prevent mutation
func (r *Record) Clone() *Record {
	return &Record{
		ID:        r.ID,
		Values:    copyValues(r.Values),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		seq:       r.seq,
	}
}

// Seq returns the insertion sequence assigned by the owning table
func (r *Record) Seq() uint64 { return r.seq }

// SetSeq is called by the owning table when the record is stored
func (r *Record) SetSeq(seq uint64) { r.seq = seq }

// Get returns the value of a column
func (r *Record) Get(column string) (Value, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Map unwraps the record values into plain Go scalars
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.Values))
	for col, val := range r.Values {
		m[col] = val.Interface()
	}
	return m
}

type recordJSON struct {
	ID        string                     `json:"id"`
	Values    map[string]json.RawMessage `json:"values"`
	CreatedAt string                     `json:"created_at"`
	UpdatedAt string                     `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler
func (r *Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:        r.ID,
		Values:    make(map[string]json.RawMessage, len(r.Values)),
		CreatedAt: r.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339Nano),
	}
	for col, val := range r.Values {
		b, err := val.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		out.Values[col] = b
	}
	return json.Marshal(out)
}

// UnmarshalRecord decodes a record written by MarshalJSON. kinds maps each
// column to its declared kind and is used to read JSON numbers back as the
// right scalar; columns absent from kinds are decoded without a hint.
func UnmarshalRecord(raw []byte, kinds map[string]Kind) (*Record, error) {
	var in recordJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, fmt.Errorf("record has no id")
	}
	if in.Values == nil {
		return nil, fmt.Errorf("record %s has no values", in.ID)
	}

	created, err := time.Parse(time.RFC3339Nano, in.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record %s: invalid created_at: %w", in.ID, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, in.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("record %s: invalid updated_at: %w", in.ID, err)
	}

	values := make(map[string]Value, len(in.Values))
	for col, b := range in.Values {
		v, err := ParseJSON(b, kinds[col])
		if err != nil {
			return nil, fmt.Errorf("record %s column %s: %w", in.ID, col, err)
		}
		values[col] = v
	}

	return &Record{
		ID:        in.ID,
		Values:    values,
		CreatedAt: created.UTC(),
		UpdatedAt: updated.UTC(),
	}, nil
}

func copyValues(values map[string]Value) map[string]Value {
	out := make(map[string]Value, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
