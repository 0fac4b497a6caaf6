package predicate

import (
	"sort"

	"github.com/leengari/memstore/internal/domain/data"
)

// CompareForSort gives a total order over values used by ORDER BY.
// Invalid (absent) values sort lowest, then values are grouped by kind, then
// ordered naturally within a kind (false < true for booleans).
func CompareForSort(a, b data.Value) int {
	if a.Kind() != b.Kind() {
		if a.Kind() < b.Kind() {
			return -1
		}
		return 1
	}
	if cmp, ok := a.Compare(b); ok {
		return cmp
	}
	if ab, ok := a.AsBool(); ok {
		bb, _ := b.AsBool()
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}
	return 0
}

// SortRecords stable-sorts records in place by column.
// Records without a value for column are treated as the lowest value, so they
// come first ascending and last descending.
func SortRecords(records []*data.Record, column string, descending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		a, _ := records[i].Get(column)
		b, _ := records[j].Get(column)
		cmp := CompareForSort(a, b)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
