package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
)

// HealthController reports process liveness and upstream reachability. It
// sits on an ops path, so the ops guard gates it in production.
type HealthController struct {
	api *apiclient.Client
}

func NewHealthController(api *apiclient.Client) *HealthController {
	return &HealthController{api: api}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := c.api.Ping(ctx); err != nil {
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", err.Error(), nil)
		return
	}
	_ = httpapi.WriteSuccess(w, map[string]string{"upstream": "ok"})
}
