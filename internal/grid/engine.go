package grid

import "github.com/comptoir-erp/comptoir-erp/internal/records"

// Phase tracks whether a grid has rendered data before. It exists only so
// the shell can group its view transitions; nothing in the data contract
// depends on it.
type Phase string

const (
	PhaseInitialLoad Phase = "initial"
	PhaseSteady      Phase = "steady"
)

// EmptyKind tells an empty page of rows apart from an empty dataset, so the
// empty-state message can say which one happened.
type EmptyKind string

const (
	EmptyNone     EmptyKind = ""
	EmptyNoData   EmptyKind = "no_data"
	EmptyFiltered EmptyKind = "filtered"
)

// Matcher is the advanced-filter hook. Transaction domains wire it to
// records.Matches; other domains leave it nil and the criteria are ignored.
type Matcher[T any] func(T, records.TransactionCriteria) bool

// Engine owns the transient UI state of one grid: global query, advanced
// criteria, sort order, pagination, and transition bookkeeping. It borrows
// the record slice handed to View for the duration of the pass and never
// mutates it; the caller keeps ownership of the data.
type Engine[T any] struct {
	columns  []ColumnSpec[T]
	matcher  Matcher[T]
	criteria records.TransactionCriteria
	query    string
	sortSpec SortSpec
	page     Page

	phase         Phase
	transitionKey int
}

// Option configures an Engine at construction.
type Option[T any] func(*Engine[T])

// WithMatcher wires the advanced-filter predicate.
func WithMatcher[T any](m Matcher[T]) Option[T] {
	return func(e *Engine[T]) { e.matcher = m }
}

// WithPageSize overrides the default page size.
func WithPageSize[T any](size int) Option[T] {
	return func(e *Engine[T]) { e.page.Size = size }
}

// NewEngine builds an engine with default criteria and pagination.
func NewEngine[T any](columns []ColumnSpec[T], opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{
		columns:  columns,
		criteria: records.DefaultCriteria(),
		page:     Page{Size: DefaultPageSize},
		phase:    PhaseInitialLoad,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Columns returns the engine's column specs.
func (e *Engine[T]) Columns() []ColumnSpec[T] { return e.columns }

// Criteria returns the current advanced-filter state.
func (e *Engine[T]) Criteria() records.TransactionCriteria { return e.criteria }

// SetQuery replaces the global text query.
func (e *Engine[T]) SetQuery(q string) {
	if q == e.query {
		return
	}
	e.query = q
	e.page.Index = 0
	e.bump()
}

// SetCriteria replaces the advanced-filter state.
func (e *Engine[T]) SetCriteria(c records.TransactionCriteria) {
	if c == e.criteria {
		return
	}
	e.criteria = c
	e.page.Index = 0
	e.bump()
}

// ResetCriteria restores the default (exclude-nothing) criteria and clears
// the global query.
func (e *Engine[T]) ResetCriteria() {
	e.SetCriteria(records.DefaultCriteria())
	e.SetQuery("")
}

// ToggleSort advances the named column through asc, desc, none. Sort
// changes after the initial load bump the transition key; the very first
// sort interaction does not.
func (e *Engine[T]) ToggleSort(column string) {
	e.sortSpec.Toggle(column)
	if e.phase == PhaseSteady {
		e.transitionKey++
	}
}

// SetSort replaces the whole sort spec, for shells that round-trip it.
func (e *Engine[T]) SetSort(spec SortSpec) {
	e.sortSpec = spec
	if e.phase == PhaseSteady {
		e.transitionKey++
	}
}

// SortKeys returns the active sort keys in priority order.
func (e *Engine[T]) SortKeys() []SortKey { return e.sortSpec.Keys() }

// SetPage moves to a 0-based page index; it is clamped on the next View.
func (e *Engine[T]) SetPage(index int) {
	if index == e.page.Index {
		return
	}
	e.page.Index = index
	e.bump()
}

// SetPageSize changes the page size and returns to the first page.
func (e *Engine[T]) SetPageSize(size int) {
	if size <= 0 || size == e.page.Size {
		return
	}
	e.page = Page{Index: 0, Size: size}
	e.bump()
}

// NoteDataChanged records that the caller refetched the underlying records.
func (e *Engine[T]) NoteDataChanged() { e.bump() }

// bump increments the transition key and leaves the initial-load phase.
func (e *Engine[T]) bump() {
	e.transitionKey++
	e.phase = PhaseSteady
}

// HasActiveFilter reports whether any filter would currently exclude rows.
func (e *Engine[T]) HasActiveFilter() bool {
	return e.query != "" || !e.criteria.IsDefault()
}

// View is the presentational result of one render pass over borrowed rows.
type View[T any] struct {
	Columns       []ColumnSpec[T]
	Rows          []T
	Meta          Meta
	Empty         EmptyKind
	Phase         Phase
	TransitionKey int
}

// View filters, sorts, clamps, and paginates rows. The source slice is left
// untouched; every stage works on a derived slice.
func (e *Engine[T]) View(rows []T) View[T] {
	filtered := rows
	if e.matcher != nil && !e.criteria.IsDefault() {
		kept := make([]T, 0, len(filtered))
		for _, row := range filtered {
			if e.matcher(row, e.criteria) {
				kept = append(kept, row)
			}
		}
		filtered = kept
	}
	filtered = GlobalFilter(filtered, e.columns, e.query)
	sorted := Sort(filtered, e.columns, e.sortSpec)

	e.page = e.page.Clamp(len(sorted))
	pageRows := Slice(sorted, e.page)

	empty := EmptyNone
	if len(sorted) == 0 {
		if len(rows) == 0 || !e.HasActiveFilter() {
			empty = EmptyNoData
		} else {
			empty = EmptyFiltered
		}
	}

	return View[T]{
		Columns:       e.columns,
		Rows:          pageRows,
		Meta:          NewMeta(e.page, len(sorted)),
		Empty:         empty,
		Phase:         e.phase,
		TransitionKey: e.transitionKey,
	}
}
