package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
)

// WebSocketController mounts the refresh hub dashboards subscribe to.
type WebSocketController struct {
	app application.Application
}

func NewWebSocketController(app application.Application) *WebSocketController {
	return &WebSocketController{app: app}
}

func (c *WebSocketController) Key() string {
	return "/ws"
}

func (c *WebSocketController) Register(r *mux.Router) {
	router := r.PathPrefix("/ws").Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.app.Hub().ServeHTTP).Methods(http.MethodGet)
}
