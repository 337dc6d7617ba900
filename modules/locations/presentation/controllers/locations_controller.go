package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/oneacrefund/fieldops-console/modules/locations/domain"
	"github.com/oneacrefund/fieldops-console/modules/locations/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/locations/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/crud"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
	"github.com/oneacrefund/fieldops-console/pkg/shared"
	"github.com/oneacrefund/fieldops-console/pkg/tabular"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

type LocationsController struct {
	app      application.Application
	service  *services.LocationService
	basePath string

	// One slot per action family per session: overlapping mutations from
	// the same dashboard contend on these instead of fresh state machines.
	siteCreates  *workflow.Registry[services.SiteDTO]
	siteEdits    *workflow.Registry[services.SiteDTO]
	groupCreates *workflow.Registry[services.GroupDTO]
	groupEdits   *workflow.Registry[services.GroupDTO]
	deletes      *workflow.Registry[string]
}

func NewLocationsController(app application.Application) application.Controller {
	return &LocationsController{
		app:          app,
		service:      app.Service(services.LocationService{}).(*services.LocationService),
		basePath:     "/locations",
		siteCreates:  workflow.NewRegistry[services.SiteDTO](),
		siteEdits:    workflow.NewRegistry[services.SiteDTO](),
		groupCreates: workflow.NewRegistry[services.GroupDTO](),
		groupEdits:   workflow.NewRegistry[services.GroupDTO](),
		deletes:      workflow.NewRegistry[string](),
	}
}

func (c *LocationsController) Key() string {
	return c.basePath
}

func (c *LocationsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("/sites", c.ListSites).Methods(http.MethodGet)
	router.HandleFunc("/sites", c.CreateSite).Methods(http.MethodPost)
	router.HandleFunc("/sites/reload", c.ReloadSites).Methods(http.MethodPost)
	router.HandleFunc("/sites/{id}", c.UpdateSite).Methods(http.MethodPut)
	router.HandleFunc("/sites/{id}", c.DeleteSite).Methods(http.MethodDelete)
	router.HandleFunc("/sites/{id}/select", c.SelectSite).Methods(http.MethodPost)
	router.HandleFunc("/districts", c.ListDistricts).Methods(http.MethodGet)
	router.HandleFunc("/pods", c.ListPods).Methods(http.MethodGet)
	router.HandleFunc("/groups", c.ListGroups).Methods(http.MethodGet)
	router.HandleFunc("/groups", c.CreateGroup).Methods(http.MethodPost)
	router.HandleFunc("/groups/{id}", c.UpdateGroup).Methods(http.MethodPut)
	router.HandleFunc("/groups/{id}", c.DeleteGroup).Methods(http.MethodDelete)
}

func siteDescriptor() tabular.Descriptor[domain.Site] {
	return tabular.Descriptor[domain.Site]{
		ID: func(s domain.Site) string { return s.ID },
		Columns: []tabular.Column[domain.Site]{
			{Name: "name", Label: "Name", Value: func(s domain.Site) string { return s.Name }},
			{Name: "region", Label: "Region", Value: func(s domain.Site) string { return s.Region }},
		},
		SearchFields: []func(domain.Site) string{
			func(s domain.Site) string { return s.Name },
			func(s domain.Site) string { return s.Region },
		},
		Timestamp: func(s domain.Site) (time.Time, bool) {
			return s.CreatedAt, !s.CreatedAt.IsZero()
		},
	}
}

func (c *LocationsController) ListSites(w http.ResponseWriter, r *http.Request) {
	query, err := crud.ParseTableQuery(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_QUERY", err.Error(), nil)
		return
	}

	sites, loadErr := c.service.GetSites(r.Context())
	if loadErr != nil && len(sites) == 0 {
		_ = crud.WriteUpstreamError(w, loadErr)
		return
	}

	state := query.TableState(configuration.Use().PageSize)
	view := tabular.Apply(siteDescriptor(), state, sites)
	mapper := mappers.SiteToViewModel(c.service.CurrentSiteID())
	_ = crud.WriteTable(w, tabular.MapView(view, mapper), c.service.SitesLoading())
}

func (c *LocationsController) ReloadSites(w http.ResponseWriter, r *http.Request) {
	sites, err := c.service.ReloadSites(r.Context())
	if err != nil && len(sites) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]any{
		"count":        len(sites),
		"current_site": c.service.CurrentSiteID(),
	})
}

func (c *LocationsController) SelectSite(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	c.service.SelectSite(id)
	_ = httpapi.WriteSuccess(w, map[string]string{"current_site": id})
}

func (c *LocationsController) CreateSite(w http.ResponseWriter, r *http.Request) {
	var dto services.SiteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var created domain.Site
	wf := c.siteCreates.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindCreate, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err := wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.SiteDTO) error {
		var submitErr error
		created, submitErr = c.service.CreateSite(ctx, payload)
		return submitErr
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteCreated(w, mappers.SiteToViewModel(c.service.CurrentSiteID())(created))
}

func (c *LocationsController) UpdateSite(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var dto services.SiteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	wf := c.siteEdits.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err = wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.SiteDTO) error {
		return c.service.UpdateSite(ctx, id, payload)
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

func (c *LocationsController) DeleteSite(w http.ResponseWriter, r *http.Request) {
	c.confirmedDelete(w, r, c.service.DeleteSite)
}

func (c *LocationsController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	c.confirmedDelete(w, r, c.service.DeleteGroup)
}

func (c *LocationsController) confirmedDelete(w http.ResponseWriter, r *http.Request, remove func(context.Context, string) error) {
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
		return remove(ctx, target)
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

func (c *LocationsController) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := c.service.GetDistricts(r.Context())
	if err != nil && len(districts) == 0 {
		writeScopedError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mapping.MapViewModels(districts, mappers.DistrictToViewModel))
}

func (c *LocationsController) ListPods(w http.ResponseWriter, r *http.Request) {
	pods, err := c.service.GetPods(r.Context())
	if err != nil && len(pods) == 0 {
		writeScopedError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mapping.MapViewModels(pods, mappers.PodToViewModel))
}

func (c *LocationsController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.service.GetGroups(r.Context())
	if err != nil && len(groups) == 0 {
		writeScopedError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, mapping.MapViewModels(groups, mappers.GroupToViewModel))
}

func (c *LocationsController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var dto services.GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var created domain.Group
	wf := c.groupCreates.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindCreate, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err := wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.GroupDTO) error {
		var submitErr error
		created, submitErr = c.service.CreateGroup(ctx, payload)
		return submitErr
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteCreated(w, mappers.GroupToViewModel(created))
}

func (c *LocationsController) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_ID", err.Error(), nil)
		return
	}
	var dto services.GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	wf := c.groupEdits.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindEdit, dto); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	err = wf.Submit(r.Context(), crud.ValidateDTO, func(ctx context.Context, payload services.GroupDTO) error {
		return c.service.UpdateGroup(ctx, id, payload)
	})
	if err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

func writeScopedError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNoSite) {
		_ = httpapi.WriteError(w, http.StatusConflict, "NO_SITE_SELECTED", "select or load a working site first", nil)
		return
	}
	_ = crud.WriteUpstreamError(w, err)
}

