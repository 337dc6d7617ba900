package tabular

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Apply runs the full view pipeline over the working set: quick filter,
// text search and date range compose as an intersection, then the active
// sort, then pagination. The input slice is never mutated; the state's page
// index is clamped in place so size and filter changes land on a valid page.
func Apply[T any](d Descriptor[T], s *TableState, rows []T) View[T] {
	filtered := filter(d, s, rows)

	if col, ok := d.column(s.SortBy); ok {
		sortRows(filtered, col, s.SortAsc)
	}

	totalPages := 0
	if s.PageSize > 0 {
		totalPages = (len(filtered) + s.PageSize - 1) / s.PageSize
	}
	if s.Page >= totalPages {
		s.Page = totalPages - 1
	}
	if s.Page < 0 {
		s.Page = 0
	}

	start := s.Page * s.PageSize
	end := start + s.PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return View[T]{
		Rows:       filtered[start:end],
		TotalRows:  len(filtered),
		Page:       s.Page,
		TotalPages: totalPages,
	}
}

// ApplyAll runs filtering and sorting without pagination, yielding the
// full view an export mirrors.
func ApplyAll[T any](d Descriptor[T], s *TableState, rows []T) []T {
	filtered := filter(d, s, rows)
	if col, ok := d.column(s.SortBy); ok {
		sortRows(filtered, col, s.SortAsc)
	}
	return filtered
}

func filter[T any](d Descriptor[T], s *TableState, rows []T) []T {
	quick := strings.ToLower(strings.TrimSpace(s.QuickFilter))
	quickActive := s.QuickFilterActive() && d.QuickFilterField != nil
	query := strings.TrimSpace(s.Query)
	rangeActive := s.Range.Active() && d.Timestamp != nil

	if !quickActive && query == "" && !rangeActive {
		return append([]T(nil), rows...)
	}

	fields := d.searchFields()
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if quickActive && !strings.EqualFold(strings.TrimSpace(d.QuickFilterField(row)), quick) {
			continue
		}
		if query != "" && !matchesQuery(fields, row, query) {
			continue
		}
		if rangeActive {
			if ts, ok := d.Timestamp(row); ok && !s.Range.Contains(ts) {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func matchesQuery[T any](fields []func(T) string, row T, query string) bool {
	lowered := strings.ToLower(query)
	for _, field := range fields {
		value := field(row)
		if strings.Contains(strings.ToLower(value), lowered) {
			return true
		}
		if fuzzy.MatchNormalizedFold(query, value) {
			return true
		}
	}
	return false
}

func sortRows[T any](rows []T, col Column[T], asc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		cmp := col.compare(rows[i], rows[j])
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
}
