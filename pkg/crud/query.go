package crud

import (
	"net/http"
	"time"

	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/tabular"
)

// TableQuery is the wire form of a table view request. Every list endpoint
// accepts the same parameters.
type TableQuery struct {
	SortBy   string `form:"sort_by"`
	SortDir  string `form:"sort_dir"`
	Quick    string `form:"quick"`
	Search   string `form:"q"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Format   string `form:"format"`
}

// ParseTableQuery decodes the table parameters from the request query.
func ParseTableQuery(r *http.Request) (*TableQuery, error) {
	q := &TableQuery{}
	if _, err := composables.UseQuery(q, r); err != nil {
		return nil, err
	}
	return q, nil
}

// TableState converts the wire query into engine state. Pages arrive
// one-indexed and are stored zero-indexed; unparseable dates leave the
// range inactive so a bad bound never filters everything out.
func (q *TableQuery) TableState(defaultPageSize int) *tabular.TableState {
	size := q.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	state := tabular.NewTableState(size)
	state.SortBy = q.SortBy
	state.SortAsc = q.SortDir != "desc"
	state.QuickFilter = q.Quick
	state.Query = q.Search
	if q.Page > 0 {
		state.Page = q.Page - 1
	}
	if from, err := time.Parse("2006-01-02", q.From); err == nil {
		if to, err := time.Parse("2006-01-02", q.To); err == nil {
			to = to.Add(24*time.Hour - time.Nanosecond)
			state.Range = tabular.DateRange{From: &from, To: &to}
		}
	}
	return state
}

// WantsExcel reports whether the caller asked for an xlsx download.
func (q *TableQuery) WantsExcel() bool {
	return q.Format == "xlsx"
}
