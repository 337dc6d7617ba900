package tabular

import (
	"sort"
	"strings"
	"time"
)

// PageSizes are the fixed page-size choices offered by every table.
var PageSizes = []int{5, 10, 20, 30, 40, 50}

// QuickFilterAll is the neutral quick-filter value restoring the full set.
const QuickFilterAll = "view all"

// DateRange is an inclusive [From, To] window over a designated timestamp
// field. When either bound is absent the filter is a no-op.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (d DateRange) Active() bool {
	return d.From != nil && d.To != nil
}

// Contains reports whether ts falls inclusively within the window.
func (d DateRange) Contains(ts time.Time) bool {
	if !d.Active() {
		return true
	}
	return !ts.Before(*d.From) && !ts.After(*d.To)
}

// SelectionState is the tri-state of the current page's selection checkbox.
type SelectionState int

const (
	SelectionNone SelectionState = iota
	SelectionSome
	SelectionAll
)

// TableState is the ephemeral per-screen UI state: created on screen mount,
// discarded on navigation away, never persisted.
type TableState struct {
	SortBy      string
	SortAsc     bool
	QuickFilter string
	Query       string
	Range       DateRange
	Page        int // zero-indexed internally, one-indexed in display
	PageSize    int
	selected    map[string]struct{}
}

func NewTableState(pageSize int) *TableState {
	return &TableState{
		SortAsc:  true,
		PageSize: clampPageSize(pageSize),
		selected: make(map[string]struct{}),
	}
}

func clampPageSize(size int) int {
	for _, allowed := range PageSizes {
		if size == allowed {
			return size
		}
	}
	return PageSizes[1]
}

// ToggleSort sorts by column ascending, or flips direction when the column
// is already active.
func (s *TableState) ToggleSort(column string) {
	if s.SortBy == column {
		s.SortAsc = !s.SortAsc
		return
	}
	s.SortBy = column
	s.SortAsc = true
}

// SetPageSize switches to one of the fixed page sizes. The page index is
// re-clamped on the next Apply so the view lands on a valid page.
func (s *TableState) SetPageSize(size int) {
	s.PageSize = clampPageSize(size)
}

// NextPage advances one page; a no-op at the last page.
func (s *TableState) NextPage(totalPages int) {
	if s.Page < totalPages-1 {
		s.Page++
	}
}

// PrevPage goes back one page; a no-op at the first page.
func (s *TableState) PrevPage() {
	if s.Page > 0 {
		s.Page--
	}
}

func (s *TableState) FirstPage() {
	s.Page = 0
}

func (s *TableState) LastPage(totalPages int) {
	if totalPages > 0 {
		s.Page = totalPages - 1
	}
}

// QuickFilterActive reports whether the quick filter narrows the set.
func (s *TableState) QuickFilterActive() bool {
	v := strings.ToLower(strings.TrimSpace(s.QuickFilter))
	return v != "" && v != QuickFilterAll
}

// ---- selection ----

func (s *TableState) ensureSelected() {
	if s.selected == nil {
		s.selected = make(map[string]struct{})
	}
}

func (s *TableState) Select(id string) {
	s.ensureSelected()
	s.selected[id] = struct{}{}
}

func (s *TableState) Deselect(id string) {
	s.ensureSelected()
	delete(s.selected, id)
}

func (s *TableState) ToggleSelect(id string) {
	s.ensureSelected()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	s.selected[id] = struct{}{}
}

func (s *TableState) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectAllPage selects exactly the rows visible on the current page. It
// deliberately does not touch rows on other pages.
func (s *TableState) SelectAllPage(pageIDs []string) {
	s.ensureSelected()
	for _, id := range pageIDs {
		s.selected[id] = struct{}{}
	}
}

// DeselectAllPage clears the selection of the current page's rows only.
func (s *TableState) DeselectAllPage(pageIDs []string) {
	s.ensureSelected()
	for _, id := range pageIDs {
		delete(s.selected, id)
	}
}

func (s *TableState) ClearSelection() {
	s.selected = make(map[string]struct{})
}

// DropSelection removes the given ids from the selection, used after their
// remote deletes were confirmed.
func (s *TableState) DropSelection(ids ...string) {
	s.ensureSelected()
	for _, id := range ids {
		delete(s.selected, id)
	}
}

// SelectedIDs returns the selected row ids in deterministic order.
func (s *TableState) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *TableState) SelectedCount() int {
	return len(s.selected)
}

// PageSelection reports the tri-state for the current page's rows: All when
// every page row is selected, Some when only a subset is (the indeterminate
// visual), None otherwise.
func (s *TableState) PageSelection(pageIDs []string) SelectionState {
	if len(pageIDs) == 0 {
		return SelectionNone
	}
	selected := 0
	for _, id := range pageIDs {
		if s.IsSelected(id) {
			selected++
		}
	}
	switch selected {
	case 0:
		return SelectionNone
	case len(pageIDs):
		return SelectionAll
	default:
		return SelectionSome
	}
}
