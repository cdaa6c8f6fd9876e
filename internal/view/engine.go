package view

import "sync"

// DefaultPageSize is the page size of a new Engine.
const DefaultPageSize = 5

// Option configures an Engine at construction.
type Option func(*options)

type options struct {
	pageSize  int
	paginated bool
}

// WithPageSize sets the initial page size. Non-positive sizes make New fail.
func WithPageSize(size int) Option {
	return func(o *options) { o.pageSize = size }
}

// WithPagination sets whether pagination starts enabled. Default true.
func WithPagination(enabled bool) Option {
	return func(o *options) { o.paginated = enabled }
}

// State is a snapshot of an Engine's view state.
type State struct {
	Sort      SortState
	Filters   FilterState
	Page      PageState
	Paginated bool
}

// DerivedView is the result of one Compute. It is never modified once
// returned; the next Compute produces a new one.
type DerivedView[T any] struct {
	Items              []T
	TotalFilteredCount int
	PageCount          int

	// State the view was computed from.
	PageIndex int
	PageSize  int
	Paginated bool
	Sort      SortState
	Filters   FilterState
}

// Empty reports whether the view has no items.
func (v DerivedView[T]) Empty() bool { return len(v.Items) == 0 }

// HasPrev reports whether a previous page exists.
func (v DerivedView[T]) HasPrev() bool { return v.Paginated && v.PageIndex > 0 }

// HasNext reports whether a following page exists.
func (v DerivedView[T]) HasNext() bool { return v.Paginated && v.PageIndex < v.PageCount-1 }

// Range returns the 1-based positions of the first and last item within the
// filtered sequence, or 0, 0 for an empty view.
func (v DerivedView[T]) Range() (first, last int) {
	if len(v.Items) == 0 {
		return 0, 0
	}
	first = 1
	if v.Paginated {
		first = v.PageIndex*v.PageSize + 1
	}
	return first, first + len(v.Items) - 1
}

// Engine owns the sort, filter and page state of one view over records of
// type T and derives pages from it. All methods are safe for concurrent use.
//
// Mutators validate before they commit: on error the state is unchanged.
type Engine[T any] struct {
	mu sync.Mutex

	schema    *Schema[T]
	sort      SortState
	filters   FilterState
	page      PageState
	paginated bool

	// version increments whenever sort or filter state changes.
	version uint64

	// records is the collection most recently passed to Compute.
	records    []T
	hasRecords bool
	// lastCount is the filtered count seen by the previous derivation, -1 before any.
	lastCount int
	// refiltered is set by a filter change not yet followed by a clamp or SetPage.
	refiltered bool

	memo memo[T]
}

// memo caches the sorted and filtered sequence for one state version and
// one record slice.
type memo[T any] struct {
	valid    bool
	version  uint64
	records  []T
	filtered []T
}

// New returns an Engine over schema with no sort, no filters and page 0.
func New[T any](schema *Schema[T], opts ...Option) (*Engine[T], error) {
	if schema == nil {
		return nil, &SchemaError{Err: ErrNilSchema}
	}

	o := options{pageSize: DefaultPageSize, paginated: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize <= 0 {
		return nil, &PaginationError{Value: o.pageSize, Err: ErrInvalidPageSize}
	}

	return &Engine[T]{
		schema:    schema,
		filters:   FilterState{},
		page:      PageState{Index: 0, Size: o.pageSize},
		paginated: o.paginated,
		lastCount: -1,
	}, nil
}

// Build validates columns into a Schema and returns an Engine over it.
func Build[T any](columns []Column[T], opts ...Option) (*Engine[T], error) {
	schema, err := NewSchema(columns...)
	if err != nil {
		return nil, err
	}
	return New(schema, opts...)
}

// Schema returns the schema the engine was built with.
func (e *Engine[T]) Schema() *Schema[T] { return e.schema }

// State returns a snapshot of the current view state.
func (e *Engine[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return State{
		Sort:      e.sort,
		Filters:   e.filters.Clone(),
		Page:      e.page,
		Paginated: e.paginated,
	}
}

// SetSort sorts by columnID. Selecting the current sort column toggles its
// direction; selecting a different column starts ascending.
func (e *Engine[T]) SetSort(columnID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.schema.sortColumn(columnID); err != nil {
		return err
	}

	next := SortState{ColumnID: columnID, Direction: Ascending}
	if e.sort.ColumnID == columnID {
		next.Direction = e.sort.Direction.Toggle()
	}
	e.sort = next
	e.version++
	return nil
}

// SetSortDirection sorts by columnID in the given direction.
func (e *Engine[T]) SetSortDirection(columnID string, dir Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.schema.sortColumn(columnID); err != nil {
		return err
	}
	if !dir.valid() {
		return &SortError{ColumnID: columnID, Reason: "unknown direction", Err: ErrInvalidSortDirection}
	}

	e.sort = SortState{ColumnID: columnID, Direction: dir}
	e.version++
	return nil
}

// ClearSort restores input order.
func (e *Engine[T]) ClearSort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sort.Active() {
		return
	}
	e.sort = SortState{}
	e.version++
}

// SetFilter sets the filter text for columnID. Empty text removes the
// column's filter.
func (e *Engine[T]) SetFilter(columnID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.schema.filterColumn(columnID); err != nil {
		return err
	}

	if e.filters[columnID] == text {
		return nil
	}
	if text == "" {
		delete(e.filters, columnID)
	} else {
		e.filters[columnID] = text
	}
	e.version++
	e.refiltered = true
	e.reconcile()
	return nil
}

// ClearFilters removes every filter.
func (e *Engine[T]) ClearFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.filters) == 0 {
		return
	}
	e.filters = FilterState{}
	e.version++
	e.refiltered = true
	e.reconcile()
}

// SetPage selects a zero-based page. An index past the last page is stored
// as given and yields an empty page until the filters next change.
func (e *Engine[T]) SetPage(index int) error {
	if index < 0 {
		return &PaginationError{Value: index, Err: ErrInvalidPageIndex}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.page.Index = index
	e.refiltered = false
	return nil
}

// SetPageSize changes rows per page and returns to the first page.
func (e *Engine[T]) SetPageSize(size int) error {
	if size <= 0 {
		return &PaginationError{Value: size, Err: ErrInvalidPageSize}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.page = PageState{Index: 0, Size: size}
	e.refiltered = false
	return nil
}

// SetPaginationEnabled switches between paged output and all rows at once.
func (e *Engine[T]) SetPaginationEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paginated = enabled
}

// Invalidate drops the cached sort and filter result. Call it after
// modifying the elements of a slice that was already passed to Compute.
func (e *Engine[T]) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.memo = memo[T]{}
}

// Compute derives the current view of records: sorted, then filtered, then
// paginated. records is read, never modified, and is retained so that later
// filter changes can keep the page index in range.
func (e *Engine[T]) Compute(records []T) (DerivedView[T], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = records
	e.hasRecords = true

	filtered, err := e.derive(records)
	if err != nil {
		return DerivedView[T]{}, err
	}
	e.clamp(len(filtered))

	page, err := Paginate(filtered, e.page, e.paginated)
	if err != nil {
		return DerivedView[T]{}, err
	}

	return DerivedView[T]{
		Items:              page.Items,
		TotalFilteredCount: page.TotalFilteredCount,
		PageCount:          page.PageCount,
		PageIndex:          e.page.Index,
		PageSize:           e.page.Size,
		Paginated:          e.paginated,
		Sort:               e.sort,
		Filters:            e.filters.Clone(),
	}, nil
}

// derive returns the sorted and filtered sequence, reusing the memo when
// neither the state version nor the record slice changed. Caller holds mu.
func (e *Engine[T]) derive(records []T) ([]T, error) {
	if e.memo.valid && e.memo.version == e.version && sameSlice(e.memo.records, records) {
		return e.memo.filtered, nil
	}

	sorted, err := SortRecords(records, e.schema, e.sort)
	if err != nil {
		return nil, err
	}
	filtered, err := FilterRecords(sorted, e.schema, e.filters)
	if err != nil {
		return nil, err
	}

	e.memo = memo[T]{valid: true, version: e.version, records: records, filtered: filtered}
	return filtered, nil
}

// reconcile re-derives against the retained records after a filter change
// so the page index is clamped immediately. Caller holds mu.
func (e *Engine[T]) reconcile() {
	if !e.hasRecords {
		return
	}
	filtered, err := e.derive(e.records)
	if err != nil {
		// State was validated before commit; Compute reports any error.
		return
	}
	e.clamp(len(filtered))
}

// clamp pulls the page index into range when the filtered count differs
// from the previous derivation, or when filters changed after the page was
// chosen. Caller holds mu.
func (e *Engine[T]) clamp(count int) {
	changed := e.refiltered || (e.lastCount != -1 && e.lastCount != count)
	e.lastCount = count
	e.refiltered = false
	if !changed {
		return
	}

	pages := PageCount(count, e.page.Size)
	switch {
	case pages == 0:
		e.page.Index = 0
	case e.page.Index > pages-1:
		e.page.Index = pages - 1
	}
}

// sameSlice reports whether a and b view the same backing array with the
// same length.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
