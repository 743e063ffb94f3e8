package pages

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/comptoir-erp/comptoir-erp/internal/grid"
	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// prefsUserID identifies the single local workstation. The shell runs one
// user per install; preferences are keyed anyway so multi-seat stays possible.
const prefsUserID = "local"

// ColumnVM describes a column for the shell.
type ColumnVM struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

// RowVM carries one rendered row plus the record id for row activation.
type RowVM struct {
	ID    int64             `json:"id"`
	Cells map[string]string `json:"cells"`
}

// GridVM is the presentational contract of one grid render pass.
type GridVM struct {
	Columns       []ColumnVM     `json:"columns"`
	Rows          []RowVM        `json:"rows"`
	Meta          grid.Meta      `json:"meta"`
	Sort          []grid.SortKey `json:"sort"`
	Empty         string         `json:"empty,omitempty"`
	EmptyMessage  string         `json:"empty_message,omitempty"`
	Phase         string         `json:"phase"`
	TransitionKey int            `json:"transition_key"`
	RowRoute      string         `json:"row_route,omitempty"`
	AddRoute      string         `json:"add_route,omitempty"`
}

// buildGridVM renders a grid view into the wire shape. rowRoute empty means
// the domain is read-only and row activation is a no-op; addRoute empty
// means the screen has no creation flow.
func buildGridVM[T any](e *grid.Engine[T], view grid.View[T], id func(T) int64, rowRoute, addRoute string) GridVM {
	cols := make([]ColumnVM, 0, len(view.Columns))
	for _, col := range view.Columns {
		cols = append(cols, ColumnVM{Key: col.Key, Label: col.Label, Sortable: col.Sortable})
	}
	rows := make([]RowVM, 0, len(view.Rows))
	for _, row := range view.Rows {
		cells := make(map[string]string, len(view.Columns))
		for _, col := range view.Columns {
			if col.Value != nil {
				cells[col.Key] = col.Value(row)
			}
		}
		rows = append(rows, RowVM{ID: id(row), Cells: cells})
	}
	vm := GridVM{
		Columns:       cols,
		Rows:          rows,
		Meta:          view.Meta,
		Sort:          e.SortKeys(),
		Empty:         string(view.Empty),
		Phase:         string(view.Phase),
		TransitionKey: view.TransitionKey,
		RowRoute:      rowRoute,
		AddRoute:      addRoute,
	}
	switch view.Empty {
	case grid.EmptyNoData:
		vm.EmptyMessage = "No records yet."
	case grid.EmptyFiltered:
		vm.EmptyMessage = "No records match the current filters."
	}
	return vm
}

// applyGridQuery updates engine state from the request's query parameters.
// Absent parameters leave the engine's current state alone, so the shell
// only sends what the user touched.
func applyGridQuery[T any](e *grid.Engine[T], q url.Values) {
	if q.Has("q") {
		e.SetQuery(q.Get("q"))
	}
	if q.Has("page") {
		if idx, err := strconv.Atoi(q.Get("page")); err == nil {
			e.SetPage(idx)
		}
	}
	if q.Has("page_size") {
		if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
			e.SetPageSize(size)
		}
	}
	if q.Has("sort") {
		e.SetSort(parseSortSpec(q.Get("sort")))
	}
	if q.Has("toggle_sort") {
		e.ToggleSort(q.Get("toggle_sort"))
	}
	if q.Get("reset") == "1" {
		e.ResetCriteria()
	}
}

// applyCriteriaQuery updates the advanced-filter state for transaction
// grids from query parameters.
func applyCriteriaQuery[T any](e *grid.Engine[T], q url.Values) {
	c := e.Criteria()
	if q.Has("party") {
		c.PartyName = q.Get("party")
	}
	if q.Has("doc_type") {
		c.DocType = parseDocType(q.Get("doc_type"))
	}
	if q.Has("doc_number") {
		c.DocNumber = q.Get("doc_number")
	}
	if q.Has("year") {
		c.Year = q.Get("year")
	}
	if q.Has("month") {
		c.Month = q.Get("month")
	}
	if q.Has("code") {
		c.CodeSearch = q.Get("code")
	}
	if q.Has("payment") {
		c.Payment = parsePaymentFilter(q.Get("payment"))
	}
	e.SetCriteria(c)
}

// parseSortSpec decodes "col:asc,other:desc" into a sort spec, primary
// key first. Malformed entries are skipped.
func parseSortSpec(raw string) grid.SortSpec {
	var keys []grid.SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		column, dir, _ := strings.Cut(part, ":")
		if column == "" {
			continue
		}
		direction := grid.Ascending
		if dir == string(grid.Descending) {
			direction = grid.Descending
		}
		keys = append(keys, grid.SortKey{Column: column, Direction: direction})
	}
	return grid.NewSortSpec(keys...)
}

func parseDocType(raw string) records.DocumentType {
	switch raw {
	case "BL":
		return records.DocumentBL
	case "Invoice":
		return records.DocumentInvoice
	default:
		return records.DocumentAny
	}
}

func parsePaymentFilter(raw string) records.PaymentFilter {
	switch records.PaymentFilter(raw) {
	case records.PaymentFilterPaid, records.PaymentFilterPartial, records.PaymentFilterUnpaid:
		return records.PaymentFilter(raw)
	default:
		return records.PaymentFilterAll
	}
}
