package data

// Index is an in-memory inverted index on a single column.
// It holds record identities only, never the records themselves; the owning
// table resolves identities through its record map.
type Index struct {
	Column string
	Data   map[Value]map[string]struct{} // value → record ids
}

// NewIndex creates an empty index on column
func NewIndex(column string) *Index {
	return &Index{
		Column: column,
		Data:   make(map[Value]map[string]struct{}),
	}
}

// Add puts id into the bucket for val
func (idx *Index) Add(val Value, id string) {
	bucket, ok := idx.Data[val]
	if !ok {
		bucket = make(map[string]struct{})
		idx.Data[val] = bucket
	}
	bucket[id] = struct{}{}
}

// Remove takes id out of the bucket for val, dropping the bucket when empty
func (idx *Index) Remove(val Value, id string) {
	bucket, ok := idx.Data[val]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(idx.Data, val)
	}
}

// Move relocates id from the old bucket to the new one
func (idx *Index) Move(oldVal, newVal Value, id string) {
	if oldVal == newVal {
		return
	}
	idx.Remove(oldVal, id)
	idx.Add(newVal, id)
}

// Lookup returns the ids stored under val (unordered)
func (idx *Index) Lookup(val Value) []string {
	bucket := idx.Data[val]
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether id is in the bucket for val
func (idx *Index) Contains(val Value, id string) bool {
	_, ok := idx.Data[val][id]
	return ok
}

// Size returns the number of distinct values indexed
func (idx *Index) Size() int {
	return len(idx.Data)
}
