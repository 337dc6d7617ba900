package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/modules/devices/domain"
	"github.com/oneacrefund/fieldops-console/modules/devices/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/devices/services"
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

type DevicesController struct {
	app      application.Application
	service  *services.DeviceService
	basePath string

	// One slot per action family per session: overlapping mutations from
	// the same dashboard contend on these instead of fresh state machines.
	creates     *workflow.Registry[services.DeviceDTO]
	edits       *workflow.Registry[services.DeviceDTO]
	deletes     *workflow.Registry[string]
	transitions *workflow.Registry[string]
}

func NewDevicesController(app application.Application) application.Controller {
	return &DevicesController{
		app:         app,
		service:     app.Service(services.DeviceService{}).(*services.DeviceService),
		basePath:    "/devices",
		creates:     workflow.NewRegistry[services.DeviceDTO](),
		edits:       workflow.NewRegistry[services.DeviceDTO](),
		deletes:     workflow.NewRegistry[string](),
		transitions: workflow.NewRegistry[string](),
	}
}

func (c *DevicesController) Key() string {
	return c.basePath
}

func (c *DevicesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/reload", c.Reload).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/post", c.Post).Methods(http.MethodPost)
	router.HandleFunc("/{id}/unpost", c.Unpost).Methods(http.MethodPost)
}

func deviceDescriptor() tabular.Descriptor[domain.Device] {
	return tabular.Descriptor[domain.Device]{
		ID: func(d domain.Device) string { return d.ID },
		Columns: []tabular.Column[domain.Device]{
			{Name: "serial_number", Label: "Serial", Value: func(d domain.Device) string { return d.SerialNumber }},
			{Name: "model", Label: "Model", Value: func(d domain.Device) string { return d.Model }},
			{Name: "imei", Label: "IMEI", Value: func(d domain.Device) string { return d.IMEI }},
			{Name: "status", Label: "Status", Value: func(d domain.Device) string { return d.Status }},
			{Name: "assigned_to", Label: "Assigned to", Value: func(d domain.Device) string { return d.AssignedTo }},
			{Name: "site", Label: "Site", Value: func(d domain.Device) string { return d.SiteName }},
			{
				Name:  "created_at",
				Label: "Added",
				Value: func(d domain.Device) string { return d.CreatedAt.Format(time.DateOnly) },
				Compare: func(a, b domain.Device) int {
					return a.CreatedAt.Compare(b.CreatedAt)
				},
			},
		},
		SearchFields: []func(domain.Device) string{
			func(d domain.Device) string { return d.SerialNumber },
			func(d domain.Device) string { return d.Model },
			func(d domain.Device) string { return d.IMEI },
			func(d domain.Device) string { return d.AssignedTo },
		},
		QuickFilterField: func(d domain.Device) string { return d.Status },
		Timestamp: func(d domain.Device) (time.Time, bool) {
			return d.CreatedAt, !d.CreatedAt.IsZero()
		},
	}
}

func (c *DevicesController) List(w http.ResponseWriter, r *http.Request) {
	query, err := crud.ParseTableQuery(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error(), nil)
		return
	}

	devices, loadErr := c.service.GetAll(r.Context())
	if loadErr != nil && len(devices) == 0 {
		_ = crud.WriteUpstreamError(w, loadErr)
		return
	}

	descriptor := deviceDescriptor()
	state := query.TableState(configuration.Use().PageSize)

	if query.WantsExcel() {
		filtered := tabular.ApplyAll(descriptor, state, devices)
		_ = crud.WriteExcel(w, "devices", deviceExportTable(descriptor, filtered))
		return
	}

	view := tabular.Apply(descriptor, state, devices)
	_ = crud.WriteTable(w, tabular.MapView(view, mappers.DeviceToViewModel), c.service.Loading())
}

func deviceExportTable(d tabular.Descriptor[domain.Device], rows []domain.Device) export.Table {
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
	return export.Table{Name: "Devices", Headers: headers, Rows: body}
}

func (c *DevicesController) Reload(w http.ResponseWriter, r *http.Request) {
	devices, err := c.service.Reload(r.Context())
	if err != nil && len(devices) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]int{"count": len(devices)})
}

func (c *DevicesController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	device, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mappers.DeviceToViewModel(device))
}

func (c *DevicesController) Create(w http.ResponseWriter, r *http.Request) {
	var dto services.DeviceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var created domain.Device
	wf := c.creates.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindCreate, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err := wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.DeviceDTO) error {
		var submitErr error
		created, submitErr = c.service.Create(ctx, payload)
		return submitErr
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteCreated(w, mappers.DeviceToViewModel(created))
}

func (c *DevicesController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var dto services.DeviceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	wf := c.edits.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err = wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.DeviceDTO) error {
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

func (c *DevicesController) Delete(w http.ResponseWriter, r *http.Request) {
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

// Post marks the device live. Like delete, the transition is a
// confirm-then-submit action.
func (c *DevicesController) Post(w http.ResponseWriter, r *http.Request) {
	c.statusTransition(w, r, c.service.Post)
}

func (c *DevicesController) Unpost(w http.ResponseWriter, r *http.Request) {
	c.statusTransition(w, r, c.service.Unpost)
}

func (c *DevicesController) statusTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) error) {
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
