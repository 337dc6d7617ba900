package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/modules/projects/domain"
	"github.com/oneacrefund/fieldops-console/modules/projects/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/projects/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/crud"
	"github.com/oneacrefund/fieldops-console/pkg/export"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
	"github.com/oneacrefund/fieldops-console/pkg/shared"
	"github.com/oneacrefund/fieldops-console/pkg/tabular"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

type ProjectsController struct {
	app      application.Application
	service  *services.ProjectService
	basePath string

	// One slot per action family per session: overlapping mutations from
	// the same dashboard contend on these instead of fresh state machines.
	creates     *workflow.Registry[services.ProjectDTO]
	edits       *workflow.Registry[services.ProjectDTO]
	deletes     *workflow.Registry[string]
	transitions *workflow.Registry[string]
}

func NewProjectsController(app application.Application) application.Controller {
	return &ProjectsController{
		app:         app,
		service:     app.Service(services.ProjectService{}).(*services.ProjectService),
		basePath:    "/projects",
		creates:     workflow.NewRegistry[services.ProjectDTO](),
		edits:       workflow.NewRegistry[services.ProjectDTO](),
		deletes:     workflow.NewRegistry[string](),
		transitions: workflow.NewRegistry[string](),
	}
}

func (c *ProjectsController) Key() string {
	return c.basePath
}

func (c *ProjectsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/reload", c.Reload).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/open", c.Open).Methods(http.MethodPost)
	router.HandleFunc("/{id}/close", c.Close).Methods(http.MethodPost)
}

// projectDescriptor ranges on the project start date, so the from/to query
// bounds select projects by when field activity began.
func projectDescriptor() tabular.Descriptor[domain.Project] {
	return tabular.Descriptor[domain.Project]{
		ID: func(p domain.Project) string { return p.ID },
		Columns: []tabular.Column[domain.Project]{
			{Name: "name", Label: "Name", Value: func(p domain.Project) string { return p.Name }},
			{Name: "code", Label: "Code", Value: func(p domain.Project) string { return p.Code }},
			{Name: "status", Label: "Status", Value: func(p domain.Project) string { return p.Status }},
			{Name: "site", Label: "Site", Value: func(p domain.Project) string { return p.SiteName }},
			{
				Name:  "budget",
				Label: "Budget",
				Value: func(p domain.Project) string {
					if p.Budget == nil {
						return ""
					}
					return p.Budget.Display()
				},
				Compare: func(a, b domain.Project) int {
					if a.Budget == nil || b.Budget == nil {
						return 0
					}
					if cmp, err := a.Budget.Compare(b.Budget); err == nil {
						return cmp
					}
					return 0
				},
			},
			{
				Name:  "start_date",
				Label: "Start",
				Value: func(p domain.Project) string { return p.StartDate.Format(time.DateOnly) },
				Compare: func(a, b domain.Project) int {
					return a.StartDate.Compare(b.StartDate)
				},
			},
			{
				Name:  "end_date",
				Label: "End",
				Value: func(p domain.Project) string { return p.EndDate.Format(time.DateOnly) },
				Compare: func(a, b domain.Project) int {
					return a.EndDate.Compare(b.EndDate)
				},
			},
		},
		SearchFields: []func(domain.Project) string{
			func(p domain.Project) string { return p.Name },
			func(p domain.Project) string { return p.Code },
			func(p domain.Project) string { return p.SiteName },
		},
		QuickFilterField: func(p domain.Project) string { return p.Status },
		Timestamp: func(p domain.Project) (time.Time, bool) {
			return p.StartDate, !p.StartDate.IsZero()
		},
	}
}

func (c *ProjectsController) List(w http.ResponseWriter, r *http.Request) {
	query, err := crud.ParseTableQuery(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error(), nil)
		return
	}

	projects, loadErr := c.service.GetAll(r.Context())
	if loadErr != nil && len(projects) == 0 {
		_ = crud.WriteUpstreamError(w, loadErr)
		return
	}

	descriptor := projectDescriptor()
	state := query.TableState(configuration.Use().PageSize)

	if query.WantsExcel() {
		filtered := tabular.ApplyAll(descriptor, state, projects)
		_ = crud.WriteExcel(w, "projects", projectExportTable(descriptor, filtered))
		return
	}

	view := tabular.Apply(descriptor, state, projects)
	_ = crud.WriteTable(w, tabular.MapView(view, mappers.ProjectToViewModel), c.service.Loading())
}

func projectExportTable(d tabular.Descriptor[domain.Project], rows []domain.Project) export.Table {
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
	return export.Table{Name: "Projects", Headers: headers, Rows: body}
}

func (c *ProjectsController) Reload(w http.ResponseWriter, r *http.Request) {
	projects, err := c.service.Reload(r.Context())
	if err != nil && len(projects) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]int{"count": len(projects)})
}

func (c *ProjectsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	project, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mappers.ProjectToViewModel(project))
}

func (c *ProjectsController) Create(w http.ResponseWriter, r *http.Request) {
	var dto services.ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var created domain.Project
	wf := c.creates.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindCreate, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err := wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.ProjectDTO) error {
		var submitErr error
		created, submitErr = c.service.Create(ctx, payload)
		return submitErr
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteCreated(w, mappers.ProjectToViewModel(created))
}

func (c *ProjectsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var dto services.ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	wf := c.edits.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err = wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.ProjectDTO) error {
		return c.service.Update(ctx, id, payload)
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (c *ProjectsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var req confirmRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	wf := c.deletes.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindDelete, id); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	if req.Confirmed {
		_ = wf.Confirm()
	}
	err = wf.Submit(r.Context(), nil, func(ctx context.Context, target string) error {
		return c.service.Delete(ctx, target)
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

func (c *ProjectsController) Open(w http.ResponseWriter, r *http.Request) {
	c.statusTransition(w, r, c.service.Open)
}

func (c *ProjectsController) Close(w http.ResponseWriter, r *http.Request) {
	c.statusTransition(w, r, c.service.Close)
}

func (c *ProjectsController) statusTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) error) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var req confirmRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if !req.Confirmed {
		_ = httpapi.WriteError(w, http.StatusConflict, "CONFIRMATION_REQUIRED", "the status change must be confirmed", nil)
		return
	}

	wf := c.transitions.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, id); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = wf.Confirm()
	err = wf.Submit(r.Context(), nil, func(ctx context.Context, target string) error {
		return apply(ctx, target)
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}
