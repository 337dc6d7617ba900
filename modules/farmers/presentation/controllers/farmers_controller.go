package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/modules/farmers/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/farmers/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/crud"
	"github.com/oneacrefund/fieldops-console/pkg/export"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
	"github.com/oneacrefund/fieldops-console/pkg/shared"
	"github.com/oneacrefund/fieldops-console/pkg/tabular"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

type FarmersController struct {
	app      application.Application
	service  *services.FarmerService
	basePath string

	// One slot per action family per session: overlapping mutations from
	// the same dashboard contend on these instead of fresh state machines.
	creates *workflow.Registry[services.FarmerDTO]
	edits   *workflow.Registry[services.FarmerDTO]
	deletes *workflow.Registry[deleteTarget]
}

func NewFarmersController(app application.Application) application.Controller {
	return &FarmersController{
		app:      app,
		service:  app.Service(services.FarmerService{}).(*services.FarmerService),
		basePath: "/farmers",
		creates:  workflow.NewRegistry[services.FarmerDTO](),
		edits:    workflow.NewRegistry[services.FarmerDTO](),
		deletes:  workflow.NewRegistry[deleteTarget](),
	}
}

func (c *FarmersController) Key() string {
	return c.basePath
}

func (c *FarmersController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/reload", c.Reload).Methods(http.MethodPost)
	router.HandleFunc("/bulk-delete", c.BulkDelete).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func farmerDescriptor() tabular.Descriptor[domain.Farmer] {
	return tabular.Descriptor[domain.Farmer]{
		ID: func(f domain.Farmer) string { return f.ID },
		Columns: []tabular.Column[domain.Farmer]{
			{Name: "oaf_id", Label: "OAF ID", Value: func(f domain.Farmer) string { return f.OafID }},
			{Name: "name", Label: "Name", Value: func(f domain.Farmer) string { return f.FullName() }},
			{Name: "phone", Label: "Phone", Value: func(f domain.Farmer) string { return f.Phone }},
			{Name: "gender", Label: "Gender", Value: func(f domain.Farmer) string { return f.Gender }},
			{Name: "status", Label: "Status", Value: func(f domain.Farmer) string { return f.Status }},
			{Name: "site", Label: "Site", Value: func(f domain.Farmer) string { return f.SiteName }},
			{Name: "district", Label: "District", Value: func(f domain.Farmer) string { return f.DistrictName }},
			{Name: "group", Label: "Group", Value: func(f domain.Farmer) string { return f.GroupName }},
			{
				Name:  "loan_balance",
				Label: "Loan balance",
				Value: func(f domain.Farmer) string {
					if f.LoanBalance == nil {
						return ""
					}
					return f.LoanBalance.Display()
				},
				Compare: func(a, b domain.Farmer) int {
					if a.LoanBalance == nil || b.LoanBalance == nil {
						return 0
					}
					if cmp, err := a.LoanBalance.Compare(b.LoanBalance); err == nil {
						return cmp
					}
					return 0
				},
			},
			{
				Name:  "created_at",
				Label: "Registered",
				Value: func(f domain.Farmer) string { return f.CreatedAt.Format("2006-01-02") },
				Compare: func(a, b domain.Farmer) int {
					return a.CreatedAt.Compare(b.CreatedAt)
				},
			},
		},
		SearchFields: []func(domain.Farmer) string{
			func(f domain.Farmer) string { return f.OafID },
			func(f domain.Farmer) string { return f.FullName() },
			func(f domain.Farmer) string { return f.Phone },
			func(f domain.Farmer) string { return f.SiteName },
			func(f domain.Farmer) string { return f.GroupName },
		},
		QuickFilterField: func(f domain.Farmer) string { return f.Status },
		Timestamp: func(f domain.Farmer) (time.Time, bool) {
			return f.CreatedAt, !f.CreatedAt.IsZero()
		},
	}
}

func (c *FarmersController) List(w http.ResponseWriter, r *http.Request) {
	query, err := crud.ParseTableQuery(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error(), nil)
		return
	}

	farmers, loadErr := c.service.GetAll(r.Context())
	if loadErr != nil && len(farmers) == 0 {
		_ = crud.WriteUpstreamError(w, loadErr)
		return
	}

	descriptor := farmerDescriptor()
	state := query.TableState(configuration.Use().PageSize)

	if query.WantsExcel() {
		filtered := tabular.ApplyAll(descriptor, state, farmers)
		_ = crud.WriteExcel(w, "farmers", exportTable(descriptor, filtered))
		return
	}

	view := tabular.Apply(descriptor, state, farmers)
	_ = crud.WriteTable(w, tabular.MapView(view, mappers.FarmerToViewModel), c.service.Loading())
}

func exportTable(d tabular.Descriptor[domain.Farmer], rows []domain.Farmer) export.Table {
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
	return export.Table{Name: "Farmers", Headers: headers, Rows: body}
}

func (c *FarmersController) Reload(w http.ResponseWriter, r *http.Request) {
	farmers, err := c.service.Reload(r.Context())
	if err != nil && len(farmers) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]int{"count": len(farmers)})
}

func (c *FarmersController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	farmer, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mappers.FarmerToViewModel(farmer))
}

func (c *FarmersController) Create(w http.ResponseWriter, r *http.Request) {
	var dto services.FarmerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var created domain.Farmer
	wf := c.creates.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindCreate, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err := wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.FarmerDTO) error {
		var submitErr error
		created, submitErr = c.service.Create(ctx, payload)
		return submitErr
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteCreated(w, mappers.FarmerToViewModel(created))
}

func (c *FarmersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var dto services.FarmerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	wf := c.edits.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err = wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.FarmerDTO) error {
		return c.service.Update(ctx, id, payload)
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

type deleteRequest struct {
	Confirmed bool `json:"confirmed"`
}

type deleteTarget struct {
	ID          string
	DisplayName string
}

func (c *FarmersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var req deleteRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	wf := c.deletes.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindDelete, deleteTarget{ID: id}); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	if req.Confirmed {
		_ = wf.Confirm()
	}
	err = wf.Submit(r.Context(), nil, func(ctx context.Context, target deleteTarget) error {
		return c.service.Delete(ctx, target.ID)
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	logger := composables.UseLogger(r.Context())
	logger.WithField("farmer_id", id).Info("farmer deleted")
	_ = httpapi.WriteSuccess(w, nil)
}

type bulkDeleteRequest struct {
	IDs       []string `json:"ids"`
	Confirmed bool     `json:"confirmed"`
}

func (c *FarmersController) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}
	if len(req.IDs) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPTY_SELECTION", "no rows selected", nil)
		return
	}
	if !req.Confirmed {
		_ = httpapi.WriteError(w, http.StatusConflict, "CONFIRMATION_REQUIRED", "bulk delete must be confirmed", nil)
		return
	}

	result := c.service.BulkDelete(r.Context(), req.IDs)
	_ = httpapi.WriteSuccess(w, &crud.BulkOutcome{Deleted: result.Deleted, Failed: result.Failed})
}

