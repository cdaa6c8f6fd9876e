// Package view derives sorted, filtered and paginated views over an
// arbitrary collection of records.
//
// The package knows nothing about where records come from or how they are
// displayed. Callers describe records with a [Schema] of columns, each of
// which projects a record onto a [Value] through an accessor, and drive an
// [Engine] that owns the view state.
//
// # Pipeline
//
// Records always flow through the same three stages, in this order:
//
//  1. [SortRecords] orders by at most one column, stably.
//  2. [FilterRecords] keeps records whose filtered columns contain the
//     filter text, ignoring case. Filtering never reorders.
//  3. [Paginate] slices the result into one page.
//
// Each stage is a pure function and may be used on its own.
//
// # Engine
//
//	engine, err := view.Build([]view.Column[Person]{
//	    {ID: "name", Sortable: true, Filterable: true,
//	        Accessor: func(p Person) view.Value { return view.String(p.Name) }},
//	    {ID: "age", Sortable: true,
//	        Accessor: func(p Person) view.Value { return view.Int(int64(p.Age)) }},
//	}, view.WithPageSize(10))
//
//	_ = engine.SetSort("age")
//	_ = engine.SetFilter("name", "an")
//	page, err := engine.Compute(people)
//
// Mutators validate before committing. When a filter change alters the
// number of matching records, the page index is pulled back into range.
//
// # Errors
//
// Every error wraps one of the package sentinels ([ErrInvalidSortColumn],
// [ErrInvalidFilterColumn], [ErrInvalidPageSize] and so on) inside a typed
// carrier ([SortError], [FilterError], [PaginationError], [SchemaError]).
package view
