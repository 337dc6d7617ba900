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
	"github.com/oneacrefund/fieldops-console/modules/farmers/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/constants"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

type fakeUpstream struct {
	mu      sync.Mutex
	farmers []map[string]any
	pairs   []map[string]any
	deleted []string
	kept    []string
	refused map[string]int

	// When set, the next update signals updateStarted then waits on
	// updateRelease before answering.
	updateStarted chan struct{}
	updateRelease chan struct{}
	// Number of updates to refuse with a conflict before succeeding.
	updateRefuse int
}

func (f *fakeUpstream) handler() http.Handler {
	root := http.NewServeMux()
	root.HandleFunc("GET /farmer", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeData(w, f.farmers)
	})
	root.HandleFunc("POST /farmer", func(w http.ResponseWriter, r *http.Request) {
		var dto map[string]any
		_ = json.NewDecoder(r.Body).Decode(&dto)
		created := map[string]any{
			"id":         "created-1",
			"oaf_id":     dto["oaf_id"],
			"first_name": dto["first_name"],
		}
		f.mu.Lock()
		f.farmers = append(f.farmers, created)
		f.mu.Unlock()
		writeData(w, created)
	})
	root.HandleFunc("GET /farmer/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, farmer := range f.farmers {
			if farmer["id"] == id {
				writeData(w, farmer)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	root.HandleFunc("PUT /farmer/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		started, release := f.updateStarted, f.updateRelease
		f.updateStarted, f.updateRelease = nil, nil
		refuse := f.updateRefuse > 0
		if refuse {
			f.updateRefuse--
		}
		f.mu.Unlock()
		if started != nil {
			started <- struct{}{}
			<-release
		}
		if refuse {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "refused"})
			return
		}
		writeData(w, nil)
	})
	root.HandleFunc("DELETE /farmer/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		defer f.mu.Unlock()
		if status, blocked := f.refused[id]; blocked {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "refused"})
			return
		}
		f.deleted = append(f.deleted, id)
		writeData(w, nil)
	})
	root.HandleFunc("GET /farmer/potential/duplicates", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		payload, _ := json.Marshal(f.pairs)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"potential_duplicates": map[string]any{
				"current_page": 1,
				"data":         json.RawMessage(payload),
			},
		})
	})
	root.HandleFunc("POST /farmer/keep/{side}/data", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Farmer1ID string `json:"farmer1_id"`
			Farmer2ID string `json:"farmer2_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.kept = append(f.kept, r.PathValue("side")+":"+body.Farmer1ID+"/"+body.Farmer2ID)
		f.mu.Unlock()
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

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testRouter wires the controllers behind the same context the middleware
// stack provides in production: a logger entry and an operator session.
func testRouter(t *testing.T, upstream *fakeUpstream) *mux.Router {
	t.Helper()
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	logger := testLogger()
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
	app.RegisterServices(
		services.NewFarmerService(client, bus, logger),
		services.NewDuplicateService(client, bus, logger),
	)

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), constants.LoggerKey, logrus.NewEntry(logger))
			ctx = composables.WithSession(ctx, &composables.Session{Token: "tok", Subject: "tester"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewFarmersController(app).Register(router)
	NewDuplicatesController(app).Register(router)
	return router
}

func seedFarmer(id, oafID, name, status string) map[string]any {
	return map[string]any{
		"id":         id,
		"oaf_id":     oafID,
		"first_name": name,
		"status":     status,
	}
}

func doJSON(router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
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

func TestFarmersController_ListReturnsTablePage(t *testing.T) {
	upstream := &fakeUpstream{farmers: []map[string]any{
		seedFarmer("f1", "RW-001", "Mukamana", "active"),
		seedFarmer("f2", "RW-002", "Uwimana", "inactive"),
	}}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodGet, "/farmers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			Rows       []map[string]any `json:"rows"`
			TotalRows  int              `json:"total_rows"`
			Page       int              `json:"page"`
			TotalPages int              `json:"total_pages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Data.TotalRows)
	require.Len(t, payload.Data.Rows, 2)
	require.Equal(t, 1, payload.Data.Page)
}

func TestFarmersController_ListQuickFilter(t *testing.T) {
	upstream := &fakeUpstream{farmers: []map[string]any{
		seedFarmer("f1", "RW-001", "Mukamana", "active"),
		seedFarmer("f2", "RW-002", "Uwimana", "inactive"),
	}}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodGet, "/farmers?quick=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			Rows []map[string]any `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Rows, 1)
	require.Equal(t, "RW-001", payload.Data.Rows[0]["oaf_id"])
}

func TestFarmersController_ExcelExport(t *testing.T) {
	upstream := &fakeUpstream{farmers: []map[string]any{
		seedFarmer("f1", "RW-001", "Mukamana", "active"),
	}}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodGet, "/farmers?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "farmers-export.xlsx")
}

func TestFarmersController_CreateValidation(t *testing.T) {
	upstream := &fakeUpstream{}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodPost, "/farmers", map[string]any{"last_name": "Uwimana"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var payload struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "VALIDATION_FAILED", payload.Code)
	require.Contains(t, payload.Fields, "oafid")
	require.Contains(t, payload.Fields, "firstname")
}

func TestFarmersController_CreateSucceeds(t *testing.T) {
	upstream := &fakeUpstream{}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodPost, "/farmers", map[string]any{
		"oaf_id":     "RW-010",
		"first_name": "Niyonzima",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "created-1", created.Data["id"])
}

func TestFarmersController_DeleteRequiresConfirmation(t *testing.T) {
	upstream := &fakeUpstream{farmers: []map[string]any{
		seedFarmer("f1", "RW-001", "Mukamana", "active"),
	}}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodDelete, "/farmers/f1", map[string]any{"confirmed": false})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, upstream.deleted)

	rec = doJSON(router, http.MethodDelete, "/farmers/f1", map[string]any{"confirmed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"f1"}, upstream.deleted)
}

func TestFarmersController_UpdateBusyWhileSubmitInFlight(t *testing.T) {
	updateRelease := make(chan struct{})
	upstream := &fakeUpstream{
		farmers: []map[string]any{
			seedFarmer("f1", "RW-001", "Mukamana", "active"),
		},
		updateStarted: make(chan struct{}, 1),
		updateRelease: updateRelease,
	}
	router := testRouter(t, upstream)

	body := map[string]any{"oaf_id": "RW-001", "first_name": "Mukamana"}
	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		firstDone <- doJSON(router, http.MethodPut, "/farmers/f1", body)
	}()
	<-upstream.updateStarted

	rec := doJSON(router, http.MethodPut, "/farmers/f1", map[string]any{
		"oaf_id":     "RW-001",
		"first_name": "Mukamana A",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	require.Equal(t, "WORKFLOW_BUSY", conflict.Code)

	close(updateRelease)
	first := <-firstDone
	require.Equal(t, http.StatusOK, first.Code, "the in-flight update is unaffected")
}

func TestFarmersController_UpdateRetriesAfterUpstreamFailure(t *testing.T) {
	upstream := &fakeUpstream{
		farmers: []map[string]any{
			seedFarmer("f1", "RW-001", "Mukamana", "active"),
		},
		updateRefuse: 1,
	}
	router := testRouter(t, upstream)

	body := map[string]any{"oaf_id": "RW-001", "first_name": "Mukamana"}
	rec := doJSON(router, http.MethodPut, "/farmers/f1", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	var refused struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refused))
	require.Equal(t, "UPSTREAM_REJECTED", refused.Code)

	rec = doJSON(router, http.MethodPut, "/farmers/f1", body)
	require.Equal(t, http.StatusOK, rec.Code, "the same session can resubmit after a failure")
}

func TestFarmersController_BulkDeleteReportsPartialFailure(t *testing.T) {
	upstream := &fakeUpstream{
		farmers: []map[string]any{
			seedFarmer("f1", "RW-001", "Mukamana", "active"),
			seedFarmer("f2", "RW-002", "Uwimana", "active"),
		},
		refused: map[string]int{"f2": http.StatusConflict},
	}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodPost, "/farmers/bulk-delete", map[string]any{
		"ids":       []string{"f1", "f2"},
		"confirmed": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			Deleted []string          `json:"deleted"`
			Failed  map[string]string `json:"failed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, []string{"f1"}, payload.Data.Deleted)
	require.Contains(t, payload.Data.Failed, "f2")
}

func TestFarmersController_RequiresSession(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	logger := testLogger()
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
	app.RegisterServices(services.NewFarmerService(client, bus, logger))

	router := mux.NewRouter()
	NewFarmersController(app).Register(router)

	req := httptest.NewRequest(http.MethodGet, "/farmers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicatesController_ListAndKeep(t *testing.T) {
	upstream := &fakeUpstream{pairs: []map[string]any{
		{
			"primary":    map[string]any{"id": "f1", "oaf_id": "RW-001"},
			"secondary":  map[string]any{"id": "f2", "oaf_id": "RW-002"},
			"similarity": 0.95,
		},
	}}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodGet, "/farmers/duplicates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Status string `json:"status"`
		Data   struct {
			Pairs       []map[string]any `json:"pairs"`
			CurrentPage int              `json:"current_page"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Data.Pairs, 1)

	rec = doJSON(router, http.MethodPost, "/farmers/duplicates/keep", map[string]any{
		"side":         "old",
		"primary_id":   "f1",
		"secondary_id": "f2",
		"confirmed":    true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"old:f1/f2"}, upstream.kept)
}

func TestDuplicatesController_KeepRequiresConfirmation(t *testing.T) {
	upstream := &fakeUpstream{pairs: []map[string]any{
		{
			"primary":    map[string]any{"id": "f1", "oaf_id": "RW-001"},
			"secondary":  map[string]any{"id": "f2", "oaf_id": "RW-002"},
			"similarity": 0.95,
		},
	}}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodGet, "/farmers/duplicates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodPost, "/farmers/duplicates/keep", map[string]any{
		"side":         "old",
		"primary_id":   "f1",
		"secondary_id": "f2",
		"confirmed":    false,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, upstream.kept)
}

func TestDuplicatesController_KeepUnknownPairIsNotFound(t *testing.T) {
	upstream := &fakeUpstream{}
	router := testRouter(t, upstream)

	rec := doJSON(router, http.MethodPost, "/farmers/duplicates/keep", map[string]any{
		"side":         "new",
		"primary_id":   "missing",
		"secondary_id": "also-missing",
		"confirmed":    true,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
