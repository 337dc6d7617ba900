package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/staff/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/constants"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

type staffUpstream struct {
	mu      sync.Mutex
	members []map[string]any
	deleted []string
}

func (u *staffUpstream) handler() http.Handler {
	root := http.NewServeMux()
	root.HandleFunc("GET /staff", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		writeData(w, u.members)
	})
	root.HandleFunc("POST /staff", func(w http.ResponseWriter, r *http.Request) {
		var dto map[string]any
		_ = json.NewDecoder(r.Body).Decode(&dto)
		created := map[string]any{
			"id":         "s-new",
			"first_name": dto["first_name"],
			"role":       dto["role"],
			"email":      dto["email"],
		}
		u.mu.Lock()
		u.members = append(u.members, created)
		u.mu.Unlock()
		writeData(w, created)
	})
	root.HandleFunc("DELETE /staff/{id}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.deleted = append(u.deleted, r.PathValue("id"))
		u.mu.Unlock()
		writeData(w, nil)
	})
	return root
}

func writeData(w http.ResponseWriter, data any) {
	payload, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   json.RawMessage(payload),
	})
}

func staffTestRouter(t *testing.T, upstream *staffUpstream) *mux.Router {
	t.Helper()
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := apiclient.New(apiclient.Options{
		BaseURL:     srv.URL,
		Credentials: apiclient.StaticCredential("tok"),
		Logger:      logger,
	})
	bus := eventbus.NewEventPublisher(logger)
	app := application.New(&application.ApplicationOptions{
		API:      client,
		EventBus: bus,
		Hub:      application.NewHub(&application.HubOptions{Logger: logger}),
		Bundle:   application.LoadBundle(),
	})
	app.RegisterServices(services.NewStaffService(client, bus, logger))

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), constants.LoggerKey, logrus.NewEntry(logger))
			ctx = composables.WithSession(ctx, &composables.Session{Token: "tok"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewStaffController(app).Register(router)
	return router
}

func staffDoJSON(router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedStaff(id, name, role, status string) map[string]any {
	return map[string]any{
		"id":         id,
		"first_name": name,
		"role":       role,
		"status":     status,
	}
}

func TestStaffController_QuickFilterByStatus(t *testing.T) {
	upstream := &staffUpstream{members: []map[string]any{
		seedStaff("s1", "Mutesi", "field officer", "active"),
		seedStaff("s2", "Habimana", "driver", "inactive"),
		seedStaff("s3", "Ingabire", "field officer", "active"),
	}}
	router := staffTestRouter(t, upstream)

	rec := staffDoJSON(router, http.MethodGet, "/staff?quick=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			Rows      []map[string]any `json:"rows"`
			TotalRows int              `json:"total_rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Data.TotalRows)
}

func TestStaffController_CreateRejectsBadEmail(t *testing.T) {
	upstream := &staffUpstream{}
	router := staffTestRouter(t, upstream)

	rec := staffDoJSON(router, http.MethodPost, "/staff", map[string]any{
		"first_name": "Mutesi",
		"role":       "field officer",
		"email":      "not-an-email",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var payload struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Contains(t, payload.Fields, "email")
}

func TestStaffController_DeleteConfirmationGate(t *testing.T) {
	upstream := &staffUpstream{members: []map[string]any{
		seedStaff("s1", "Mutesi", "field officer", "active"),
	}}
	router := staffTestRouter(t, upstream)

	rec := staffDoJSON(router, http.MethodDelete, "/staff/s1", map[string]any{"confirmed": false})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, upstream.deleted)

	rec = staffDoJSON(router, http.MethodDelete, "/staff/s1", map[string]any{"confirmed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"s1"}, upstream.deleted)
}
