package view

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this package wraps exactly one of
// these, so callers can branch with errors.Is and recover details with errors.As.
var (
	ErrNilSchema            = errors.New("nil schema")
	ErrDuplicateColumnID    = errors.New("duplicate column id")
	ErrEmptyColumnID        = errors.New("empty column id")
	ErrNilAccessor          = errors.New("column has no accessor")
	ErrInvalidSortColumn    = errors.New("invalid sort column")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	ErrInvalidFilterColumn  = errors.New("invalid filter column")
	ErrInvalidPageSize      = errors.New("invalid page size")
	ErrInvalidPageIndex     = errors.New("invalid page index")
)

// SchemaError reports a column that could not be accepted into a Schema.
type SchemaError struct {
	ColumnID string // Offending column id (may be empty)
	Position int    // Zero-based position in the column list
	Err      error  // ErrDuplicateColumnID, ErrEmptyColumnID, ErrNilAccessor or ErrNilSchema
}

func (e *SchemaError) Error() string {
	if e.Err == ErrNilSchema {
		return "schema: " + e.Err.Error()
	}
	return fmt.Sprintf("schema: column %q at position %d: %v", e.ColumnID, e.Position, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// SortError reports a sort request that references a column the schema
// cannot sort by, or an unknown direction.
type SortError struct {
	ColumnID string
	Reason   string
	Err      error
}

func (e *SortError) Error() string {
	return fmt.Sprintf("sort: %v %q: %s", e.Err, e.ColumnID, e.Reason)
}

func (e *SortError) Unwrap() error { return e.Err }

// FilterError reports a filter entry on a column the schema cannot filter.
type FilterError struct {
	ColumnID string
	Reason   string
	Err      error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter: %v %q: %s", e.Err, e.ColumnID, e.Reason)
}

func (e *FilterError) Unwrap() error { return e.Err }

// PaginationError reports a page size or page index outside its domain.
type PaginationError struct {
	Value int
	Err   error
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination: %v %d", e.Err, e.Value)
}

func (e *PaginationError) Unwrap() error { return e.Err }

const (
	reasonUnknownColumn = "unknown column"
	reasonNotSortable   = "column is not sortable"
	reasonNotFilterable = "column is not filterable"
)
