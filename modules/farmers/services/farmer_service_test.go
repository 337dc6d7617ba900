package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

type upstreamStub struct {
	mu       sync.Mutex
	farmers  []map[string]any
	deleted  []string
	rejected map[string]int
	fetches  int
}

func (u *upstreamStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /farmer", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.fetches++
		writeEnvelope(w, u.farmers)
	})
	mux.HandleFunc("POST /farmer", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var dto map[string]any
		_ = json.Unmarshal(body, &dto)
		created := map[string]any{
			"id":         "f-new",
			"oaf_id":     dto["oaf_id"],
			"first_name": dto["first_name"],
			"last_name":  dto["last_name"],
		}
		u.mu.Lock()
		u.farmers = append(u.farmers, created)
		u.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeEnvelope(w, created)
	})
	mux.HandleFunc("DELETE /farmer/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		u.mu.Lock()
		defer u.mu.Unlock()
		if status, blocked := u.rejected[id]; blocked {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":  "error",
				"message": "farmer has an open loan",
			})
			return
		}
		u.deleted = append(u.deleted, id)
		writeEnvelope(w, nil)
	})
	return mux
}

func writeEnvelope(w http.ResponseWriter, data any) {
	payload, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   json.RawMessage(payload),
	})
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newStubService(t *testing.T, stub *upstreamStub) (*FarmerService, eventbus.EventBus) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	client := apiclient.New(apiclient.Options{
		BaseURL:     srv.URL,
		Credentials: apiclient.StaticCredential("tok"),
		Logger:      quietLogger(),
	})
	bus := eventbus.NewEventPublisher(quietLogger())
	return NewFarmerService(client, bus, quietLogger()), bus
}

func stubFarmer(id, oafID, name string) map[string]any {
	return map[string]any{
		"id":         id,
		"oaf_id":     oafID,
		"first_name": name,
		"status":     "active",
	}
}

func TestFarmerService_GetAllLoadsOnceAndCaches(t *testing.T) {
	stub := &upstreamStub{farmers: []map[string]any{
		stubFarmer("f1", "RW-001", "Mukamana"),
		stubFarmer("f2", "RW-002", "Uwimana"),
	}}
	service, _ := newStubService(t, stub)

	first, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "RW-001", first[0].OafID)

	second, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Equal(t, 1, stub.fetches)
}

func TestFarmerService_ReloadFetchesFreshData(t *testing.T) {
	stub := &upstreamStub{farmers: []map[string]any{stubFarmer("f1", "RW-001", "Mukamana")}}
	service, _ := newStubService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	stub.mu.Lock()
	stub.farmers = append(stub.farmers, stubFarmer("f2", "RW-002", "Uwimana"))
	stub.mu.Unlock()

	reloaded, err := service.Reload(context.Background())
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	require.Equal(t, 2, stub.fetches)
}

func TestFarmerService_CreatePublishesAndInvalidates(t *testing.T) {
	stub := &upstreamStub{farmers: []map[string]any{stubFarmer("f1", "RW-001", "Mukamana")}}
	service, bus := newStubService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	var published *domain.CreatedEvent
	bus.Subscribe(func(event *domain.CreatedEvent) {
		published = event
	})

	created, err := service.Create(context.Background(), FarmerDTO{
		OafID:     "RW-003",
		FirstName: "Niyonzima",
	})
	require.NoError(t, err)
	require.Equal(t, "f-new", created.ID)
	require.NotNil(t, published)
	require.Equal(t, "f-new", published.Result.ID)

	all, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestFarmerService_DeleteRemovesFromWorkingSet(t *testing.T) {
	stub := &upstreamStub{farmers: []map[string]any{
		stubFarmer("f1", "RW-001", "Mukamana"),
		stubFarmer("f2", "RW-002", "Uwimana"),
	}}
	service, bus := newStubService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	var deleted *domain.DeletedEvent
	bus.Subscribe(func(event *domain.DeletedEvent) {
		deleted = event
	})

	require.NoError(t, service.Delete(context.Background(), "f1"))
	require.Equal(t, []string{"f1"}, stub.deleted)
	require.NotNil(t, deleted)
	require.Equal(t, "f1", deleted.ID)

	remaining, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "f2", remaining[0].ID)
	require.Equal(t, 1, stub.fetches)
}

func TestFarmerService_BulkDeleteDropsOnlyConfirmedRows(t *testing.T) {
	stub := &upstreamStub{
		farmers: []map[string]any{
			stubFarmer("f1", "RW-001", "Mukamana"),
			stubFarmer("f2", "RW-002", "Uwimana"),
			stubFarmer("f3", "RW-003", "Niyonzima"),
		},
		rejected: map[string]int{"f2": http.StatusConflict},
	}
	service, _ := newStubService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	result := service.BulkDelete(context.Background(), []string{"f1", "f2", "f3"})
	require.Equal(t, []string{"f1", "f3"}, result.Deleted)
	require.Contains(t, result.Failed, "f2")

	remaining, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "f2", remaining[0].ID)
}

func TestFarmerService_FailedReloadRetainsSnapshot(t *testing.T) {
	stub := &upstreamStub{farmers: []map[string]any{stubFarmer("f1", "RW-001", "Mukamana")}}
	srv := httptest.NewServer(stub.handler())
	client := apiclient.New(apiclient.Options{
		BaseURL:     srv.URL,
		Credentials: apiclient.StaticCredential("tok"),
		Logger:      quietLogger(),
	})
	service := NewFarmerService(client, eventbus.NewEventPublisher(quietLogger()), quietLogger())

	loaded, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	srv.Close()

	retained, err := service.Reload(context.Background())
	require.Error(t, err)
	require.Len(t, retained, 1)
	require.Equal(t, "f1", retained[0].ID)
}
