package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/gridview/internal/view"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Row is one record of a table, keyed by field name.
type Row map[string]any

// FieldType represents the data type of a table field.
// It decides how raw cell values are coerced before sorting and filtering.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldBool
)

// String returns the lowercase type name used in JSON output.
func (t FieldType) String() string {
	switch t {
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	case FieldNumeric:
		return "numeric"
	case FieldBool:
		return "bool"
	default:
		return "text"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// FieldSpec describes one column of a table.
type FieldSpec struct {
	Name       string     // Row key and column id: "dealer_name"
	Label      string     // Display name (defaults to Name)
	DBColumn   string     // Database column name (if different from Name, otherwise derived)
	Type       FieldType  // Cell coercion
	Sortable   bool       // Column may be sorted
	Filterable bool       // Column may be filtered
	Align      view.Align // Display alignment (defaults by type)
	MinWidth   int        // Display width hint in characters

	// Render formats a cell for display and export. Sorting and filtering
	// still use the coerced value. Optional.
	Render func(v any) string
}

// TableInfo contains display information about a table.
type TableInfo struct {
	Key         string   `json:"key"`   // Unique identifier: "dealers"
	Group       string   `json:"group"` // Data source: "Dealers", "Access"
	Label       string   `json:"label"` // Display name: "Dealer Inventory"
	Description string   `json:"description,omitempty"`
	Columns     []string `json:"columns"` // Field names in display order
}

// TableDefinition contains everything needed to serve a table.
type TableDefinition struct {
	Info   TableInfo
	Fields []FieldSpec
	Source Source
}

// ColumnInfo describes a column of a computed view.
type ColumnInfo struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Type       FieldType  `json:"type"`
	Sortable   bool       `json:"sortable"`
	Filterable bool       `json:"filterable"`
	Align      view.Align `json:"align"`
	MinWidth   int        `json:"minWidth,omitempty"`
}

// SortSpec represents the sort column and direction of a view.
type SortSpec struct {
	Column string `json:"column,omitempty"` // Empty when unsorted
	Dir    string `json:"dir,omitempty"`    // "asc" or "desc"
}

// ViewRequest is the view state a caller asks for. Zero values select the
// defaults: no sort, no filters, first page, default page size.
type ViewRequest struct {
	Sort     string            // Sort column
	Dir      string            // "asc" (default) or "desc"
	Filters  map[string]string // Column -> filter text
	Page     int               // Zero-based page index
	PageSize int               // 0 selects the default
	ShowAll  bool              // Disable pagination
}

// ViewResult is one computed page of a table.
type ViewResult struct {
	SessionID string            `json:"sessionId,omitempty"`
	Table     TableInfo         `json:"table"`
	Columns   []ColumnInfo      `json:"columns"`
	Rows      []Row             `json:"rows"`
	Total     int               `json:"total"`    // Rows matching the filters
	Page      int               `json:"page"`     // Zero-based page index
	PageSize  int               `json:"pageSize"` // Rows per page
	PageCount int               `json:"pageCount"`
	Paginated bool              `json:"paginated"`
	Sort      SortSpec          `json:"sort"`
	Filters   map[string]string `json:"filters"`
	PageSizes []int             `json:"pageSizes"` // Selectable page sizes
}

// HasPrev reports whether a previous page exists.
func (r *ViewResult) HasPrev() bool { return r.Paginated && r.Page > 0 }

// HasNext reports whether a following page exists.
func (r *ViewResult) HasNext() bool { return r.Paginated && r.Page < r.PageCount-1 }

// FirstRow returns the 1-based position of the first row on the page, or 0.
func (r *ViewResult) FirstRow() int {
	if len(r.Rows) == 0 {
		return 0
	}
	if !r.Paginated {
		return 1
	}
	return r.Page*r.PageSize + 1
}

// LastRow returns the 1-based position of the last row on the page, or 0.
func (r *ViewResult) LastRow() int {
	if len(r.Rows) == 0 {
		return 0
	}
	return r.FirstRow() + len(r.Rows) - 1
}

// Summary returns "page X of Y · N rows". An empty view reads as page 1 of 1.
func (r *ViewResult) Summary() string {
	rows := "rows"
	if r.Total == 1 {
		rows = "row"
	}
	return fmt.Sprintf("page %d of %d · %d %s", r.Page+1, max(r.PageCount, 1), r.Total, rows)
}

// Column returns the column with the given id.
func (r *ViewResult) Column(id string) (ColumnInfo, bool) {
	for _, c := range r.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return ColumnInfo{}, false
}
