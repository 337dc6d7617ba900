package tabular

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableState_SelectionToggle(t *testing.T) {
	state := NewTableState(10)
	state.ToggleSelect("1")
	require.True(t, state.IsSelected("1"))
	state.ToggleSelect("1")
	require.False(t, state.IsSelected("1"))
}

func TestTableState_SelectAllIsPageScoped(t *testing.T) {
	rows := make([]farmerRow, 0, 12)
	for i := 1; i <= 12; i++ {
		rows = append(rows, farmerRow{ID: fmt.Sprintf("%d", i), Name: "x", Site: "Huye"})
	}
	state := NewTableState(5)
	d := farmerDescriptor()

	view := Apply(d, state, rows)
	state.SelectAllPage(view.PageIDs(d.ID))
	require.Equal(t, 5, state.SelectedCount())
	require.False(t, state.IsSelected("6"), "rows beyond the current page stay untouched")

	state.NextPage(view.TotalPages)
	view = Apply(d, state, rows)
	require.Equal(t, SelectionNone, state.PageSelection(view.PageIDs(d.ID)))
}

func TestTableState_PageSelectionTriState(t *testing.T) {
	state := NewTableState(5)
	pageIDs := []string{"1", "2", "3"}

	require.Equal(t, SelectionNone, state.PageSelection(pageIDs))
	state.Select("1")
	require.Equal(t, SelectionSome, state.PageSelection(pageIDs))
	state.SelectAllPage(pageIDs)
	require.Equal(t, SelectionAll, state.PageSelection(pageIDs))
	state.DeselectAllPage(pageIDs)
	require.Equal(t, SelectionNone, state.PageSelection(pageIDs))
}

func TestTableState_SelectionSurvivesFilterChanges(t *testing.T) {
	state := NewTableState(10)
	state.Select("3")
	state.QuickFilter = "Nyamagabe"
	view := Apply(farmerDescriptor(), state, sampleFarmers())
	require.Equal(t, 2, view.TotalRows)
	require.True(t, state.IsSelected("3"), "filtering the view does not clear the selection")
}

func TestTableState_DropSelection(t *testing.T) {
	state := NewTableState(10)
	state.Select("1")
	state.Select("2")
	state.DropSelection("1")
	require.Equal(t, []string{"2"}, state.SelectedIDs())
}
