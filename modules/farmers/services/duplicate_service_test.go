package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

type duplicatesStub struct {
	mu    sync.Mutex
	pairs []map[string]any
	kept  []string
	fail  bool
}

func (d *duplicatesStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /farmer/potential/duplicates", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		payload, _ := json.Marshal(d.pairs)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"potential_duplicates": map[string]any{
				"current_page": 1,
				"data":         json.RawMessage(payload),
			},
		})
	})
	mux.HandleFunc("POST /farmer/keep/{side}/data", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Farmer1ID string `json:"farmer1_id"`
			Farmer2ID string `json:"farmer2_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		d.mu.Lock()
		d.kept = append(d.kept, r.PathValue("side")+":"+body.Farmer1ID+"/"+body.Farmer2ID)
		d.mu.Unlock()
		writeEnvelope(w, nil)
	})
	return mux
}

func stubPair(primaryID, secondaryID string) map[string]any {
	return map[string]any{
		"primary":    map[string]any{"id": primaryID, "oaf_id": "RW-" + primaryID},
		"secondary":  map[string]any{"id": secondaryID, "oaf_id": "RW-" + secondaryID},
		"similarity": 0.92,
	}
}

func newDuplicateStubService(t *testing.T, stub *duplicatesStub) (*DuplicateService, eventbus.EventBus) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	client := apiclient.New(apiclient.Options{
		BaseURL:     srv.URL,
		Credentials: apiclient.StaticCredential("tok"),
		Logger:      quietLogger(),
	})
	bus := eventbus.NewEventPublisher(quietLogger())
	return NewDuplicateService(client, bus, quietLogger()), bus
}

func TestDuplicateService_GetPage(t *testing.T) {
	stub := &duplicatesStub{pairs: []map[string]any{
		stubPair("f1", "f2"),
		stubPair("f3", "f4"),
	}}
	service, _ := newDuplicateStubService(t, stub)

	page, err := service.GetPage(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Pairs, 2)
	require.Equal(t, 1, page.CurrentPage)
	require.Equal(t, "f1", page.Pairs[0].Primary.ID)
}

func TestDuplicateService_FailedPageRetainsPrevious(t *testing.T) {
	stub := &duplicatesStub{pairs: []map[string]any{stubPair("f1", "f2")}}
	service, _ := newDuplicateStubService(t, stub)

	_, err := service.GetPage(context.Background(), 1, 10)
	require.NoError(t, err)

	stub.mu.Lock()
	stub.fail = true
	stub.mu.Unlock()

	page, err := service.GetPage(context.Background(), 2, 10)
	require.Error(t, err)
	require.Len(t, page.Pairs, 1)
	require.Equal(t, 1, page.CurrentPage)
}

func TestDuplicateService_KeepOldRemovesPairAndPublishes(t *testing.T) {
	stub := &duplicatesStub{pairs: []map[string]any{
		stubPair("f1", "f2"),
		stubPair("f3", "f4"),
	}}
	service, bus := newDuplicateStubService(t, stub)

	page, err := service.GetPage(context.Background(), 1, 10)
	require.NoError(t, err)

	var resolved *domain.DuplicateResolvedEvent
	bus.Subscribe(func(event *domain.DuplicateResolvedEvent) {
		resolved = event
	})

	require.NoError(t, service.Keep(context.Background(), apiclient.KeepOld, page.Pairs[0]))
	require.Equal(t, []string{"old:f1/f2"}, stub.kept)

	require.NotNil(t, resolved)
	require.Equal(t, "f1", resolved.KeptID)
	require.Equal(t, "f2", resolved.DiscardedID)

	remaining := service.CurrentPage()
	require.Len(t, remaining.Pairs, 1)
	require.Equal(t, "f3", remaining.Pairs[0].Primary.ID)
}

func TestDuplicateService_KeepNewSwapsKeptAndDiscarded(t *testing.T) {
	stub := &duplicatesStub{pairs: []map[string]any{stubPair("f1", "f2")}}
	service, bus := newDuplicateStubService(t, stub)

	page, err := service.GetPage(context.Background(), 1, 10)
	require.NoError(t, err)

	var resolved *domain.DuplicateResolvedEvent
	bus.Subscribe(func(event *domain.DuplicateResolvedEvent) {
		resolved = event
	})

	require.NoError(t, service.Keep(context.Background(), apiclient.KeepNew, page.Pairs[0]))
	require.Equal(t, []string{"new:f1/f2"}, stub.kept)

	require.NotNil(t, resolved)
	require.Equal(t, "f2", resolved.KeptID)
	require.Equal(t, "f1", resolved.DiscardedID)
	require.Empty(t, service.CurrentPage().Pairs)
}
