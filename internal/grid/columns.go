package grid

// ColumnSpec describes one grid column for records of type T. Value renders
// the cell; Compare, when set, overrides the default comparison of rendered
// cells (numeric and bucket columns need it, text columns usually do not).
type ColumnSpec[T any] struct {
	Key      string
	Label    string
	Value    func(T) string
	Compare  func(a, b T) int
	Sortable bool
}

// StockStatusColumnKey identifies the derived stock-status column.
const StockStatusColumnKey = "stock_status"

// AppendStockStatus appends the derived stock-status column for domains that
// opt in. Appending is idempotent: if the column is already present the
// input is returned unchanged, so re-rendering cannot duplicate it.
func AppendStockStatus[T any](cols []ColumnSpec[T], value func(T) string, compare func(a, b T) int) []ColumnSpec[T] {
	for _, col := range cols {
		if col.Key == StockStatusColumnKey {
			return cols
		}
	}
	out := make([]ColumnSpec[T], len(cols), len(cols)+1)
	copy(out, cols)
	return append(out, ColumnSpec[T]{
		Key:      StockStatusColumnKey,
		Label:    "Status",
		Value:    value,
		Compare:  compare,
		Sortable: true,
	})
}
