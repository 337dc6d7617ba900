package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/modules/staff/domain"
	"github.com/oneacrefund/fieldops-console/modules/staff/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/staff/services"
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

type StaffController struct {
	app      application.Application
	service  *services.StaffService
	basePath string

	// One slot per action family per session: overlapping mutations from
	// the same dashboard contend on these instead of fresh state machines.
	creates *workflow.Registry[services.StaffDTO]
	edits   *workflow.Registry[services.StaffDTO]
	deletes *workflow.Registry[string]
}

func NewStaffController(app application.Application) application.Controller {
	return &StaffController{
		app:      app,
		service:  app.Service(services.StaffService{}).(*services.StaffService),
		basePath: "/staff",
		creates:  workflow.NewRegistry[services.StaffDTO](),
		edits:    workflow.NewRegistry[services.StaffDTO](),
		deletes:  workflow.NewRegistry[string](),
	}
}

func (c *StaffController) Key() string {
	return c.basePath
}

func (c *StaffController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/reload", c.Reload).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func staffDescriptor() tabular.Descriptor[domain.Staff] {
	return tabular.Descriptor[domain.Staff]{
		ID: func(s domain.Staff) string { return s.ID },
		Columns: []tabular.Column[domain.Staff]{
			{Name: "name", Label: "Name", Value: func(s domain.Staff) string { return s.FullName() }},
			{Name: "role", Label: "Role", Value: func(s domain.Staff) string { return s.Role }},
			{Name: "phone", Label: "Phone", Value: func(s domain.Staff) string { return s.Phone }},
			{Name: "email", Label: "Email", Value: func(s domain.Staff) string { return s.Email }},
			{Name: "status", Label: "Status", Value: func(s domain.Staff) string { return s.Status }},
			{Name: "site", Label: "Site", Value: func(s domain.Staff) string { return s.SiteName }},
			{
				Name:  "created_at",
				Label: "Joined",
				Value: func(s domain.Staff) string { return s.CreatedAt.Format(time.DateOnly) },
				Compare: func(a, b domain.Staff) int {
					return a.CreatedAt.Compare(b.CreatedAt)
				},
			},
		},
		SearchFields: []func(domain.Staff) string{
			func(s domain.Staff) string { return s.FullName() },
			func(s domain.Staff) string { return s.Phone },
			func(s domain.Staff) string { return s.Email },
			func(s domain.Staff) string { return s.Role },
		},
		QuickFilterField: func(s domain.Staff) string { return s.Status },
		Timestamp: func(s domain.Staff) (time.Time, bool) {
			return s.CreatedAt, !s.CreatedAt.IsZero()
		},
	}
}

func (c *StaffController) List(w http.ResponseWriter, r *http.Request) {
	query, err := crud.ParseTableQuery(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error(), nil)
		return
	}

	members, loadErr := c.service.GetAll(r.Context())
	if loadErr != nil && len(members) == 0 {
		_ = crud.WriteUpstreamError(w, loadErr)
		return
	}

	descriptor := staffDescriptor()
	state := query.TableState(configuration.Use().PageSize)

	if query.WantsExcel() {
		filtered := tabular.ApplyAll(descriptor, state, members)
		_ = crud.WriteExcel(w, "staff", staffExportTable(descriptor, filtered))
		return
	}

	view := tabular.Apply(descriptor, state, members)
	_ = crud.WriteTable(w, tabular.MapView(view, mappers.StaffToViewModel), c.service.Loading())
}

func staffExportTable(d tabular.Descriptor[domain.Staff], rows []domain.Staff) export.Table {
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
	return export.Table{Name: "Staff", Headers: headers, Rows: body}
}

func (c *StaffController) Reload(w http.ResponseWriter, r *http.Request) {
	members, err := c.service.Reload(r.Context())
	if err != nil && len(members) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]int{"count": len(members)})
}

func (c *StaffController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	member, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mappers.StaffToViewModel(member))
}

func (c *StaffController) Create(w http.ResponseWriter, r *http.Request) {
	var dto services.StaffDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var created domain.Staff
	wf := c.creates.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindCreate, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err := wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.StaffDTO) error {
		var submitErr error
		created, submitErr = c.service.Create(ctx, payload)
		return submitErr
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteCreated(w, mappers.StaffToViewModel(created))
}

func (c *StaffController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var dto services.StaffDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	wf := c.edits.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err = wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.StaffDTO) error {
		return c.service.Update(ctx, id, payload)
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

type staffDeleteRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (c *StaffController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var req staffDeleteRequest
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
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

