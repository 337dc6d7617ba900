package tabular

import (
	"strings"
	"time"
)

// Column describes one sortable table column. Value stringifies the cell for
// display and default comparison; Compare overrides ordering for columns
// where lexicographic order is wrong, numeric or date columns typically.
type Column[T any] struct {
	Name    string
	Label   string
	Value   func(T) string
	Compare func(a, b T) int
}

func (c Column[T]) compare(a, b T) int {
	if c.Compare != nil {
		return c.Compare(a, b)
	}
	return strings.Compare(strings.ToLower(c.Value(a)), strings.ToLower(c.Value(b)))
}

// Descriptor wires a row type into the table engine: identity, columns, the
// fields participating in text search, the single field driving the quick
// filter, and the timestamp the date-range filter inspects.
type Descriptor[T any] struct {
	Columns []Column[T]
	ID      func(T) string

	// SearchFields feed the global text search. When empty every column's
	// Value participates.
	SearchFields []func(T) string

	// QuickFilterField is compared case-insensitively against the active
	// quick-filter value. Nil disables the quick filter.
	QuickFilterField func(T) string

	// Timestamp exposes the row's date-range field. The second return is
	// false for rows without one; such rows pass an active range filter.
	Timestamp func(T) (time.Time, bool)
}

func (d Descriptor[T]) column(name string) (Column[T], bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column[T]{}, false
}

func (d Descriptor[T]) searchFields() []func(T) string {
	if len(d.SearchFields) > 0 {
		return d.SearchFields
	}
	fields := make([]func(T) string, 0, len(d.Columns))
	for _, col := range d.Columns {
		fields = append(fields, col.Value)
	}
	return fields
}

// View is the render-ready slice of the working set after filtering,
// sorting and pagination.
type View[T any] struct {
	Rows       []T
	TotalRows  int
	Page       int // zero-indexed, clamped
	TotalPages int
}

func (v View[T]) DisplayPage() int {
	return v.Page + 1
}

func (v View[T]) HasPrev() bool {
	return v.Page > 0
}

func (v View[T]) HasNext() bool {
	return v.Page < v.TotalPages-1
}

// PageIDs returns ids of the rows on the current page, the unit that
// page-scoped select-all operates on.
func (v View[T]) PageIDs(id func(T) string) []string {
	ids := make([]string, 0, len(v.Rows))
	for _, row := range v.Rows {
		ids = append(ids, id(row))
	}
	return ids
}
