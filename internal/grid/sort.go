package grid

import (
	"sort"
	"strings"
)

// Direction orders a sorted column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey pairs a column with a direction.
type SortKey struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// SortSpec holds the active sort keys. Insertion order is priority order:
// the first key is the primary sort, later keys break ties.
type SortSpec struct {
	keys []SortKey
}

// NewSortSpec builds a spec from explicit keys, primary first.
func NewSortSpec(keys ...SortKey) SortSpec {
	return SortSpec{keys: keys}
}

// Keys returns a copy of the active sort keys in priority order.
func (s SortSpec) Keys() []SortKey {
	out := make([]SortKey, len(s.keys))
	copy(out, s.keys)
	return out
}

// IsEmpty reports whether no column is sorted.
func (s SortSpec) IsEmpty() bool { return len(s.keys) == 0 }

// Toggle advances the named column through asc, desc, none. A column not
// currently sorted joins at the lowest priority, ascending.
func (s *SortSpec) Toggle(column string) {
	for i, key := range s.keys {
		if key.Column != column {
			continue
		}
		if key.Direction == Ascending {
			s.keys[i].Direction = Descending
			return
		}
		s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
		return
	}
	s.keys = append(s.keys, SortKey{Column: column, Direction: Ascending})
}

// Sort returns the rows ordered by spec. The sort is stable: rows comparing
// equal on every key keep their original relative order, and the input
// slice itself is never reordered.
func Sort[T any](rows []T, cols []ColumnSpec[T], spec SortSpec) []T {
	if spec.IsEmpty() {
		return rows
	}
	byKey := make(map[string]ColumnSpec[T], len(cols))
	for _, col := range cols {
		byKey[col.Key] = col
	}
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		for _, key := range spec.keys {
			col, ok := byKey[key.Column]
			if !ok || !col.Sortable {
				continue
			}
			c := compareCells(col, out[i], out[j])
			if c == 0 {
				continue
			}
			if key.Direction == Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

func compareCells[T any](col ColumnSpec[T], a, b T) int {
	if col.Compare != nil {
		return col.Compare(a, b)
	}
	if col.Value == nil {
		return 0
	}
	return strings.Compare(col.Value(a), col.Value(b))
}
