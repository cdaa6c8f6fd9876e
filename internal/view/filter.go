package view

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// FilterState maps a column id to its filter text. Entries with empty text
// are inactive.
type FilterState map[string]string

// Clone returns an independent copy of f. A nil state clones to an empty map.
func (f FilterState) Clone() FilterState {
	out := make(FilterState, len(f))
	maps.Copy(out, f)
	return out
}

// Columns returns the ids of active filters in sorted order.
func (f FilterState) Columns() []string {
	ids := make([]string, 0, len(f))
	for id, text := range f {
		if text != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Active reports whether any filter entry has non-empty text.
func (f FilterState) Active() bool {
	for _, text := range f {
		if text != "" {
			return true
		}
	}
	return false
}

// predicate is one compiled column filter.
type predicate[T any] struct {
	accessor Accessor[T]
	needle   string
}

// FilterRecords returns the records whose filtered columns all contain their
// filter text, compared after Unicode case folding. Relative order is kept.
// An empty state passes every record. Every key must name a filterable
// column, even when its text is empty.
func FilterRecords[T any](records []T, schema *Schema[T], state FilterState) ([]T, error) {
	if schema == nil {
		return nil, &SchemaError{Err: ErrNilSchema}
	}

	fold := cases.Fold()

	// Validate in sorted order so the reported column is deterministic.
	preds := make([]predicate[T], 0, len(state))
	for _, id := range slices.Sorted(maps.Keys(state)) {
		col, err := schema.filterColumn(id)
		if err != nil {
			return nil, err
		}
		text := state[id]
		if text == "" {
			continue
		}
		preds = append(preds, predicate[T]{accessor: col.Accessor, needle: fold.String(text)})
	}

	if len(preds) == 0 {
		return slices.Clone(records), nil
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if matchesAll(rec, preds, fold) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matchesAll[T any](rec T, preds []predicate[T], fold cases.Caser) bool {
	for _, p := range preds {
		if !strings.Contains(fold.String(p.accessor(rec).Canonical()), p.needle) {
			return false
		}
	}
	return true
}
