package view

import (
	"slices"
	"strings"
)

// Direction is the order a sorted column is arranged in.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// valid reports whether d is one of the two defined directions.
func (d Direction) valid() bool {
	return d == Ascending || d == Descending
}

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending", case-insensitively.
// An empty string parses as Ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, &SortError{ColumnID: s, Reason: "expected asc or desc", Err: ErrInvalidSortDirection}
	}
}

// SortState selects at most one sort column. An empty ColumnID means no
// sort: records keep their input order.
type SortState struct {
	ColumnID  string
	Direction Direction
}

// Active reports whether a sort column is set.
func (s SortState) Active() bool { return s.ColumnID != "" }

// sortKey pairs a record's position with its precomputed cell value.
type sortKey struct {
	pos   int
	value Value
}

// SortRecords returns a new slice holding records ordered by state.
// The sort is stable: records with equal keys keep their relative input
// order in both directions. The input slice is never modified.
func SortRecords[T any](records []T, schema *Schema[T], state SortState) ([]T, error) {
	if schema == nil {
		return nil, &SchemaError{Err: ErrNilSchema}
	}
	if !state.Active() {
		return slices.Clone(records), nil
	}

	col, err := schema.sortColumn(state.ColumnID)
	if err != nil {
		return nil, err
	}
	if !state.Direction.valid() {
		return nil, &SortError{ColumnID: state.ColumnID, Reason: "unknown direction", Err: ErrInvalidSortDirection}
	}

	// Evaluate each accessor once, then order the permutation.
	keys := make([]sortKey, len(records))
	for i, rec := range records {
		keys[i] = sortKey{pos: i, value: col.Accessor(rec)}
	}

	desc := state.Direction == Descending
	slices.SortStableFunc(keys, func(a, b sortKey) int {
		cmp := Compare(a.value, b.value)
		if desc {
			cmp = -cmp
		}
		return cmp
	})

	out := make([]T, len(records))
	for i, k := range keys {
		out[i] = records[k.pos]
	}
	return out, nil
}
