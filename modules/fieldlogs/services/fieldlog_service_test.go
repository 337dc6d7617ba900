package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/domain"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

type logUpstream struct {
	mu      sync.Mutex
	entries []map[string]any
	deletes int
}

func (u *logUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fieldlog", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		payload, _ := json.Marshal(u.entries)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   json.RawMessage(payload),
		})
	})
	mux.HandleFunc("DELETE /fieldlog/{id}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.deletes++
		u.mu.Unlock()
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	return mux
}

func newLogService(t *testing.T, stub *logUpstream) (*FieldLogService, eventbus.EventBus) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	client := apiclient.New(apiclient.Options{
		BaseURL:     srv.URL,
		Credentials: apiclient.StaticCredential("tok"),
		Logger:      logger,
	})
	bus := eventbus.NewEventPublisher(logger)
	return NewFieldLogService(client, bus, logger), bus
}

func stubEntry(id, category, message string) map[string]any {
	return map[string]any{
		"id":         id,
		"category":   category,
		"message":    message,
		"created_at": time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func TestFieldLogService_RemoveFromViewLeavesUpstreamUntouched(t *testing.T) {
	stub := &logUpstream{entries: []map[string]any{
		stubEntry("l1", "sync", "device d1 synced 42 records"),
		stubEntry("l2", "auth", "staff st1 signed in"),
		stubEntry("l3", "sync", "device d2 synced 7 records"),
	}}
	service, bus := newLogService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	var hidden *domain.RemovedFromViewEvent
	bus.Subscribe(func(event *domain.RemovedFromViewEvent) {
		hidden = event
	})

	removed := service.RemoveFromView([]string{"l1", "l3", "missing"})
	require.Equal(t, 2, removed)
	require.NotNil(t, hidden)
	require.Equal(t, 0, stub.deletes)

	remaining, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "l2", remaining[0].ID)
}

func TestFieldLogService_ReloadRestoresHiddenEntries(t *testing.T) {
	stub := &logUpstream{entries: []map[string]any{
		stubEntry("l1", "sync", "device d1 synced 42 records"),
		stubEntry("l2", "auth", "staff st1 signed in"),
	}}
	service, _ := newLogService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, service.RemoveFromView([]string{"l1"}))

	reloaded, err := service.Reload(context.Background())
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
}

func TestFieldLogService_RemoveNothingPublishesNothing(t *testing.T) {
	stub := &logUpstream{entries: []map[string]any{stubEntry("l1", "sync", "device d1 synced")}}
	service, bus := newLogService(t, stub)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	published := false
	bus.Subscribe(func(event *domain.RemovedFromViewEvent) {
		published = true
	})

	require.Equal(t, 0, service.RemoveFromView([]string{"absent"}))
	require.False(t, published)
}
