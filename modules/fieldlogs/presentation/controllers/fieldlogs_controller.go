package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/domain"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/crud"
	"github.com/oneacrefund/fieldops-console/pkg/export"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
	"github.com/oneacrefund/fieldops-console/pkg/tabular"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

type FieldLogsController struct {
	app      application.Application
	service  *services.FieldLogService
	basePath string

	// One slot per session: overlapping removals from the same dashboard
	// contend on this instead of fresh state machines.
	removes *workflow.Registry[[]string]
}

func NewFieldLogsController(app application.Application) application.Controller {
	return &FieldLogsController{
		app:      app,
		service:  app.Service(services.FieldLogService{}).(*services.FieldLogService),
		basePath: "/fieldlogs",
		removes:  workflow.NewRegistry[[]string](),
	}
}

func (c *FieldLogsController) Key() string {
	return c.basePath
}

func (c *FieldLogsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/reload", c.Reload).Methods(http.MethodPost)
	router.HandleFunc("/remove", c.RemoveFromView).Methods(http.MethodPost)
}

func logDescriptor() tabular.Descriptor[domain.LogEntry] {
	return tabular.Descriptor[domain.LogEntry]{
		ID: func(e domain.LogEntry) string { return e.ID },
		Columns: []tabular.Column[domain.LogEntry]{
			{
				Name:  "created_at",
				Label: "Time",
				Value: func(e domain.LogEntry) string { return e.CreatedAt.Format(time.RFC3339) },
				Compare: func(a, b domain.LogEntry) int {
					return a.CreatedAt.Compare(b.CreatedAt)
				},
			},
			{Name: "category", Label: "Category", Value: func(e domain.LogEntry) string { return e.Category }},
			{Name: "message", Label: "Message", Value: func(e domain.LogEntry) string { return e.Message }},
			{Name: "actor", Label: "Actor", Value: func(e domain.LogEntry) string { return e.ActorName }},
			{Name: "device", Label: "Device", Value: func(e domain.LogEntry) string { return e.DeviceSerial }},
			{Name: "site", Label: "Site", Value: func(e domain.LogEntry) string { return e.SiteName }},
		},
		SearchFields: []func(domain.LogEntry) string{
			func(e domain.LogEntry) string { return e.Message },
			func(e domain.LogEntry) string { return e.ActorName },
			func(e domain.LogEntry) string { return e.DeviceSerial },
		},
		QuickFilterField: func(e domain.LogEntry) string { return e.Category },
		Timestamp: func(e domain.LogEntry) (time.Time, bool) {
			return e.CreatedAt, !e.CreatedAt.IsZero()
		},
	}
}

func (c *FieldLogsController) List(w http.ResponseWriter, r *http.Request) {
	query, err := crud.ParseTableQuery(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error(), nil)
		return
	}

	entries, loadErr := c.service.GetAll(r.Context())
	if loadErr != nil && len(entries) == 0 {
		_ = crud.WriteUpstreamError(w, loadErr)
		return
	}

	descriptor := logDescriptor()
	state := query.TableState(configuration.Use().PageSize)

	if query.WantsExcel() {
		filtered := tabular.ApplyAll(descriptor, state, entries)
		_ = crud.WriteExcel(w, "fieldlogs", logExportTable(descriptor, filtered))
		return
	}

	view := tabular.Apply(descriptor, state, entries)
	_ = crud.WriteTable(w, tabular.MapView(view, mappers.LogEntryToViewModel), c.service.Loading())
}

func logExportTable(d tabular.Descriptor[domain.LogEntry], rows []domain.LogEntry) export.Table {
	headers := make([]string, 0, len(d.Columns))
	for _, col := range d.Columns {
		headers = append(headers, col.Label)
	}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(d.Columns))
		for _, col := range d.Columns {
			cells = append(cells, col.Value(row))
		}
		body = append(body, cells)
	}
	return export.Table{Name: "Field logs", Headers: headers, Rows: body}
}

func (c *FieldLogsController) Reload(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.Reload(r.Context())
	if err != nil && len(entries) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]int{"count": len(entries)})
}

type removeRequest struct {
	IDs       []string `json:"ids"`
	Confirmed bool     `json:"confirmed"`
}

// RemoveFromView hides entries from the working set. The upstream has no
// delete endpoint for log entries; a reload restores them.
func (c *FieldLogsController) RemoveFromView(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}
	if len(req.IDs) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "NO_IDS", "no entry ids given", nil)
		return
	}

	removed := 0
	wf := c.removes.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindDelete, req.IDs); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	if req.Confirmed {
		_ = wf.Confirm()
	}
	err := wf.Submit(r.Context(), nil, func(ctx context.Context, ids []string) error {
		removed = c.service.RemoveFromView(ids)
		return nil
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]int{"removed": removed})
}
