package application

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietHubLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_ConcurrentBroadcastsDeliverIntactFrames(t *testing.T) {
	hub := NewHub(&HubOptions{
		Logger:      quietHubLogger(),
		CheckOrigin: func(*http.Request) bool { return true },
	})
	conn := dialHub(t, hub)

	const writers = 16
	const perWriter = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.Broadcast(RefreshEvent{
					Resource: "farmers",
					Action:   "updated",
					ID:       fmt.Sprintf("%d-%d", n, j),
				})
			}
		}(i)
	}

	seen := make(map[string]struct{}, writers*perWriter)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for len(seen) < writers*perWriter {
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		var event RefreshEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		require.Equal(t, "farmers", event.Resource)
		require.Equal(t, "updated", event.Action)
		seen[event.ID] = struct{}{}
	}
	wg.Wait()
	require.Len(t, seen, writers*perWriter)
}

func TestHub_DropsConnectionWhoseWriteFails(t *testing.T) {
	hub := NewHub(&HubOptions{
		Logger:      quietHubLogger(),
		CheckOrigin: func(*http.Request) bool { return true },
	})
	conn := dialHub(t, hub)

	_ = conn.Close()
	require.Eventually(t, func() bool {
		hub.Broadcast(RefreshEvent{Resource: "farmers", Action: "updated"})
		return hub.ConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}
