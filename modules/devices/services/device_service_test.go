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
	"github.com/oneacrefund/fieldops-console/modules/devices/domain"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

type deviceUpstream struct {
	mu      sync.Mutex
	devices []map[string]any
	patches []string
}

func (u *deviceUpstream) handler() http.Handler {
	root := http.NewServeMux()
	root.HandleFunc("GET /device", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		writeEnvelope(w, u.devices)
	})
	root.HandleFunc("PATCH /device/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&patch)
		id := r.PathValue("id")
		u.mu.Lock()
		u.patches = append(u.patches, id+":"+patch.Status)
		for _, device := range u.devices {
			if device["id"] == id {
				device["status"] = patch.Status
			}
		}
		u.mu.Unlock()
		writeEnvelope(w, nil)
	})
	return root
}

func writeEnvelope(w http.ResponseWriter, data any) {
	payload, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   json.RawMessage(payload),
	})
}

func newDeviceService(t *testing.T, upstream *deviceUpstream) (*DeviceService, eventbus.EventBus) {
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
	return NewDeviceService(client, bus, logger), bus
}

func TestDeviceService_PostTransition(t *testing.T) {
	upstream := &deviceUpstream{devices: []map[string]any{
		{"id": "d1", "serial_number": "SN-100", "status": "unposted"},
	}}
	service, bus := newDeviceService(t, upstream)

	_, err := service.GetAll(context.Background())
	require.NoError(t, err)

	var changed *domain.StatusChangedEvent
	bus.Subscribe(func(event *domain.StatusChangedEvent) {
		changed = event
	})

	require.NoError(t, service.Post(context.Background(), "d1"))
	require.Equal(t, []string{"d1:posted"}, upstream.patches)
	require.NotNil(t, changed)
	require.Equal(t, domain.StatusPosted, changed.Status)

	devices, err := service.GetAll(context.Background())
	require.NoError(t, err)
	require.True(t, devices[0].Posted())
}

func TestDeviceService_UnpostTransition(t *testing.T) {
	upstream := &deviceUpstream{devices: []map[string]any{
		{"id": "d1", "serial_number": "SN-100", "status": "posted"},
	}}
	service, _ := newDeviceService(t, upstream)

	require.NoError(t, service.Unpost(context.Background(), "d1"))
	require.Equal(t, []string{"d1:unposted"}, upstream.patches)
}
