package view

import "slices"

// PageState locates one page: Index is zero-based, Size is rows per page.
type PageState struct {
	Index int
	Size  int
}

// Page is one slice of a sorted and filtered sequence.
type Page[T any] struct {
	Items              []T
	TotalFilteredCount int
	PageCount          int
}

// PageCount returns ceil(total/size), or 0 when total is 0.
// Size must be positive.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate slices records into the page selected by state.
// A start past the end yields an empty page, not an error.
// With enabled false every record is returned and PageCount is 1 for a
// non-empty sequence.
func Paginate[T any](records []T, state PageState, enabled bool) (Page[T], error) {
	if state.Size <= 0 {
		return Page[T]{}, &PaginationError{Value: state.Size, Err: ErrInvalidPageSize}
	}
	if state.Index < 0 {
		return Page[T]{}, &PaginationError{Value: state.Index, Err: ErrInvalidPageIndex}
	}

	total := len(records)
	page := Page[T]{TotalFilteredCount: total, Items: []T{}}

	if !enabled {
		if total > 0 {
			page.PageCount = 1
			page.Items = slices.Clone(records)
		}
		return page, nil
	}

	page.PageCount = PageCount(total, state.Size)

	// Past the last page. Checked before multiplying so Index*Size cannot overflow.
	if state.Index > (total-1)/state.Size || total == 0 {
		return page, nil
	}
	start := state.Index * state.Size
	end := start + min(state.Size, total-start)
	page.Items = slices.Clone(records[start:end])
	return page, nil
}
