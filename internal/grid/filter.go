package grid

import "strings"

// GlobalFilter keeps the rows whose rendered cells contain query,
// case-insensitively, in any column. An empty or blank query keeps
// everything. The input slice is never modified.
func GlobalFilter[T any](rows []T, cols []ColumnSpec[T], query string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	q := strings.ToLower(query)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, col := range cols {
			if col.Value == nil {
				continue
			}
			if strings.Contains(strings.ToLower(col.Value(row)), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
