package view

// Align is a display hint carried by a column. The engine never reads it.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Accessor projects a record onto one cell value. It must be pure and
// deterministic: the same record always yields the same Value.
type Accessor[T any] func(T) Value

// Column describes one projection of a record.
type Column[T any] struct {
	ID         string // Unique within a Schema
	Label      string // Display name; defaults to ID
	Sortable   bool
	Filterable bool
	Accessor   Accessor[T]

	// Presentation hints, passed through untouched.
	Align    Align
	MinWidth int
}

// Schema is an immutable, validated, ordered set of columns.
// Column order is display order only.
type Schema[T any] struct {
	columns []Column[T]
	index   map[string]int
}

// NewSchema validates columns and returns a Schema.
// It fails with a *SchemaError when an id is empty or repeated, or when a
// column has no accessor.
func NewSchema[T any](columns ...Column[T]) (*Schema[T], error) {
	s := &Schema[T]{
		columns: make([]Column[T], len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		if col.ID == "" {
			return nil, &SchemaError{Position: i, Err: ErrEmptyColumnID}
		}
		if _, exists := s.index[col.ID]; exists {
			return nil, &SchemaError{ColumnID: col.ID, Position: i, Err: ErrDuplicateColumnID}
		}
		if col.Accessor == nil {
			return nil, &SchemaError{ColumnID: col.ID, Position: i, Err: ErrNilAccessor}
		}
		if col.Label == "" {
			col.Label = col.ID
		}
		if col.Align == "" {
			col.Align = AlignLeft
		}
		s.columns[i] = col
		s.index[col.ID] = i
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Intended for package-level schemas built from literals.
func MustSchema[T any](columns ...Column[T]) *Schema[T] {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema[T]) Len() int { return len(s.columns) }

// Columns returns a copy of the columns in display order.
func (s *Schema[T]) Columns() []Column[T] {
	out := make([]Column[T], len(s.columns))
	copy(out, s.columns)
	return out
}

// IDs returns the column ids in display order.
func (s *Schema[T]) IDs() []string {
	ids := make([]string, len(s.columns))
	for i, col := range s.columns {
		ids[i] = col.ID
	}
	return ids
}

// Column looks up a column by id.
func (s *Schema[T]) Column(id string) (Column[T], bool) {
	i, ok := s.index[id]
	if !ok {
		return Column[T]{}, false
	}
	return s.columns[i], true
}

// sortColumn resolves id to a sortable column.
func (s *Schema[T]) sortColumn(id string) (Column[T], error) {
	col, ok := s.Column(id)
	if !ok {
		return Column[T]{}, &SortError{ColumnID: id, Reason: reasonUnknownColumn, Err: ErrInvalidSortColumn}
	}
	if !col.Sortable {
		return Column[T]{}, &SortError{ColumnID: id, Reason: reasonNotSortable, Err: ErrInvalidSortColumn}
	}
	return col, nil
}

// filterColumn resolves id to a filterable column.
func (s *Schema[T]) filterColumn(id string) (Column[T], error) {
	col, ok := s.Column(id)
	if !ok {
		return Column[T]{}, &FilterError{ColumnID: id, Reason: reasonUnknownColumn, Err: ErrInvalidFilterColumn}
	}
	if !col.Filterable {
		return Column[T]{}, &FilterError{ColumnID: id, Reason: reasonNotFilterable, Err: ErrInvalidFilterColumn}
	}
	return col, nil
}
