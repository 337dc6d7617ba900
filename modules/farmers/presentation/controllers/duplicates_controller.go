package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/modules/farmers/presentation/mappers"
	"github.com/oneacrefund/fieldops-console/modules/farmers/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/crud"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

type DuplicatesController struct {
	app      application.Application
	service  *services.DuplicateService
	basePath string
	keeps    *workflow.Registry[domain.DuplicatePair]
}

func NewDuplicatesController(app application.Application) application.Controller {
	return &DuplicatesController{
		app:      app,
		service:  app.Service(services.DuplicateService{}).(*services.DuplicateService),
		basePath: "/farmers/duplicates",
		keeps:    workflow.NewRegistry[domain.DuplicatePair](),
	}
}

func (c *DuplicatesController) Key() string {
	return c.basePath
}

func (c *DuplicatesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/keep", c.Keep).Methods(http.MethodPost)
}

func (c *DuplicatesController) List(w http.ResponseWriter, r *http.Request) {
	pagination := composables.UsePaginated(r)
	page, err := c.service.GetPage(r.Context(), pagination.Page, pagination.Limit)
	if err != nil && len(page.Pairs) == 0 {
		_ = crud.WriteUpstreamError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]any{
		"pairs":        mapping.MapViewModels(page.Pairs, mappers.PairToViewModel),
		"current_page": page.CurrentPage,
		"per_page":     page.PerPage,
	})
}

type keepRequest struct {
	Side        string `json:"side"`
	PrimaryID   string `json:"primary_id"`
	SecondaryID string `json:"secondary_id"`
	Confirmed   bool   `json:"confirmed"`
}

func (c *DuplicatesController) Keep(w http.ResponseWriter, r *http.Request) {
	var req keepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_BODY", err.Error(), nil)
		return
	}

	var side apiclient.KeepSide
	switch req.Side {
	case "old":
		side = apiclient.KeepOld
	case "new":
		side = apiclient.KeepNew
	default:
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_SIDE", "side must be 'old' or 'new'", nil)
		return
	}

	pair, found := c.findPair(req.PrimaryID, req.SecondaryID)
	if !found {
		_ = httpapi.WriteError(w, http.StatusNotFound, "PAIR_NOT_FOUND", "duplicate pair is not in the working set", nil)
		return
	}

	wf := c.keeps.For(crud.WorkflowKey(r))
	if err := wf.Prepare(workflow.KindKeep, pair); err != nil {
		_ = crud.WriteWorkflowError(w, err)
		return
	}
	if req.Confirmed {
		// Keep decisions are destructive for the discarded side and gate
		// behind the same confirmation as deletes.
		_ = wf.Confirm()
	} else {
		_ = httpapi.WriteError(w, http.StatusConflict, "CONFIRMATION_REQUIRED", "the keep decision must be confirmed", nil)
		return
	}

	err := wf.Submit(r.Context(), nil, func(ctx context.Context, target domain.DuplicatePair) error {
		return c.service.Keep(ctx, side, target)
	})
	if err != nil {
		crud.WriteWorkflowError(w, err)
		return
	}
	_ = httpapi.WriteSuccess(w, nil)
}

func (c *DuplicatesController) findPair(primaryID, secondaryID string) (domain.DuplicatePair, bool) {
	for _, pair := range c.service.CurrentPage().Pairs {
		if pair.Primary.ID == primaryID && pair.Secondary.ID == secondaryID {
			return pair, true
		}
	}
	return domain.DuplicatePair{}, false
}
