package tabular

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type farmerRow struct {
	ID        string
	Name      string
	Site      string
	CreatedAt time.Time
}

func farmerDescriptor() Descriptor[farmerRow] {
	return Descriptor[farmerRow]{
		ID: func(r farmerRow) string { return r.ID },
		Columns: []Column[farmerRow]{
			{Name: "name", Label: "Name", Value: func(r farmerRow) string { return r.Name }},
			{Name: "site", Label: "Site", Value: func(r farmerRow) string { return r.Site }},
			{
				Name:  "created_at",
				Label: "Created",
				Value: func(r farmerRow) string { return r.CreatedAt.Format("2006-01-02") },
				Compare: func(a, b farmerRow) int {
					return a.CreatedAt.Compare(b.CreatedAt)
				},
			},
		},
		QuickFilterField: func(r farmerRow) string { return r.Site },
		Timestamp: func(r farmerRow) (time.Time, bool) {
			return r.CreatedAt, !r.CreatedAt.IsZero()
		},
	}
}

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func sampleFarmers() []farmerRow {
	return []farmerRow{
		{ID: "1", Name: "Agnes Mukamana", Site: "Nyamagabe", CreatedAt: day(1)},
		{ID: "2", Name: "Jean Bosco", Site: "Huye", CreatedAt: day(5)},
		{ID: "3", Name: "Claudine Uwase", Site: "Nyamagabe", CreatedAt: day(10)},
		{ID: "4", Name: "Eric Ndayishimiye", Site: "Musanze", CreatedAt: day(15)},
		{ID: "5", Name: "Chantal Uwamahoro", Site: "Huye", CreatedAt: day(20)},
	}
}

func TestApply_NoFiltersPreservesOrder(t *testing.T) {
	state := NewTableState(10)
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 5, view.TotalRows)
	require.Equal(t, "1", view.Rows[0].ID)
	require.Equal(t, "5", view.Rows[4].ID)
}

func TestApply_QuickFilterExactCaseInsensitive(t *testing.T) {
	state := NewTableState(10)
	state.QuickFilter = "nyamagabe"
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 2, view.TotalRows)
	for _, row := range view.Rows {
		require.Equal(t, "Nyamagabe", row.Site)
	}
}

func TestApply_QuickFilterViewAllIsNeutral(t *testing.T) {
	state := NewTableState(10)
	state.QuickFilter = "View All"
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 5, view.TotalRows)
}

func TestApply_SearchMatchesSubstringsAndFuzzy(t *testing.T) {
	state := NewTableState(10)
	state.Query = "uwa"
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 2, view.TotalRows, "Uwase and Uwamahoro both contain the fragment")
}

func TestApply_FiltersComposeAsIntersection(t *testing.T) {
	state := NewTableState(10)
	state.QuickFilter = "Huye"
	state.Query = "chantal"
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 1, view.TotalRows)
	require.Equal(t, "5", view.Rows[0].ID)
}

func TestApply_DateRangeInclusiveAndHalfOpenIsNoop(t *testing.T) {
	state := NewTableState(10)
	from, to := day(5), day(15)
	state.Range = DateRange{From: &from, To: &to}
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 3, view.TotalRows, "boundary days are included")

	state.Range = DateRange{From: &from}
	view = Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 5, view.TotalRows, "a single bound leaves the set untouched")
}

func TestApply_SortIsStableAndFlips(t *testing.T) {
	rows := []farmerRow{
		{ID: "a", Name: "Same", Site: "B", CreatedAt: day(1)},
		{ID: "b", Name: "Same", Site: "A", CreatedAt: day(2)},
		{ID: "c", Name: "Same", Site: "C", CreatedAt: day(3)},
	}
	state := NewTableState(10)
	state.ToggleSort("name")
	view := Apply(farmerDescriptor(), state, rows)
	require.Equal(t, []string{"a", "b", "c"}, idsOf(view.Rows), "equal keys keep their relative order")

	state.ToggleSort("name")
	require.False(t, state.SortAsc)
	view = Apply(farmerDescriptor(), state, rows)
	require.Equal(t, []string{"a", "b", "c"}, idsOf(view.Rows))

	state.ToggleSort("site")
	require.True(t, state.SortAsc, "switching columns resets to ascending")
	view = Apply(farmerDescriptor(), state, rows)
	require.Equal(t, []string{"b", "a", "c"}, idsOf(view.Rows))
}

func TestApply_SortByCustomComparator(t *testing.T) {
	state := NewTableState(10)
	state.ToggleSort("created_at")
	state.ToggleSort("created_at")
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, "5", view.Rows[0].ID, "descending by date puts the newest first")
}

func TestApply_PaginationBoundaries(t *testing.T) {
	rows := make([]farmerRow, 0, 12)
	for i := 1; i <= 12; i++ {
		rows = append(rows, farmerRow{ID: fmt.Sprintf("%d", i), Name: fmt.Sprintf("Farmer %02d", i), Site: "Huye", CreatedAt: day(1)})
	}
	state := NewTableState(5)
	d := farmerDescriptor()

	view := Apply(d, state, rows)
	require.Equal(t, 3, view.TotalPages)
	require.Len(t, view.Rows, 5)
	require.False(t, view.HasPrev())

	state.PrevPage()
	require.Equal(t, 0, state.Page, "prev at the first page is a no-op")

	state.LastPage(view.TotalPages)
	view = Apply(d, state, rows)
	require.Len(t, view.Rows, 2)
	require.False(t, view.HasNext())

	state.NextPage(view.TotalPages)
	require.Equal(t, 2, state.Page, "next at the last page is a no-op")
}

func TestApply_PageSizeChangeClampsPage(t *testing.T) {
	rows := make([]farmerRow, 0, 12)
	for i := 1; i <= 12; i++ {
		rows = append(rows, farmerRow{ID: fmt.Sprintf("%d", i), Name: "x", Site: "Huye"})
	}
	state := NewTableState(5)
	d := farmerDescriptor()
	view := Apply(d, state, rows)
	state.LastPage(view.TotalPages)

	state.SetPageSize(50)
	view = Apply(d, state, rows)
	require.Equal(t, 0, view.Page)
	require.Len(t, view.Rows, 12)
}

func TestApply_InvalidPageSizeFallsBack(t *testing.T) {
	state := NewTableState(7)
	require.Equal(t, 10, state.PageSize)
	state.SetPageSize(13)
	require.Equal(t, 10, state.PageSize)
}

func TestApply_FilterToEmptyYieldsEmptyView(t *testing.T) {
	state := NewTableState(5)
	state.Query = "zzzz-no-such-farmer"
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Zero(t, view.TotalRows)
	require.Empty(t, view.Rows)
	require.Zero(t, view.TotalPages)
	require.False(t, view.HasNext())
}

func idsOf(rows []farmerRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
