package application

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// RefreshEvent tells connected dashboards that a resource collection
// changed upstream and their working set should be reloaded.
type RefreshEvent struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	ID       string `json:"id,omitempty"`
}

type HubOptions struct {
	Logger      *logrus.Logger
	CheckOrigin func(r *http.Request) bool
}

// hubConn serializes writes to one dashboard connection. Broadcasts run
// on the goroutines of whatever mutations triggered them, and gorilla
// connections allow at most one concurrent writer.
type hubConn struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (c *hubConn) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub fans refresh events out to every connected dashboard session.
type Hub struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]*hubConn
}

func NewHub(opts *HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		conns: make(map[*websocket.Conn]*hubConn),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = &hubConn{conn: conn}
	h.mu.Unlock()

	// Drain the read side so close frames and pings are processed; the
	// console never expects client payloads.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast sends the event to every connection, dropping the ones whose
// writes fail. Overlapping broadcasts from concurrent mutations are safe:
// each connection takes its write lock before the frame goes out.
func (h *Hub) Broadcast(event RefreshEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("failed to encode refresh event")
		return
	}

	h.mu.Lock()
	conns := make([]*hubConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.write(payload); err != nil {
			h.logger.WithError(err).Debug("dropping dead websocket connection")
			h.drop(c.conn)
		}
	}
}

// ConnectionCount reports how many dashboards are attached.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
