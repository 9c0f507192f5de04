package host

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType represents the type of a push message.
type MessageType string

const (
	// MessageHello is the first message on every connection and carries
	// the current snapshot.
	MessageHello MessageType = "hello"

	// MessageSnapshot is sent after each committed change.
	MessageSnapshot MessageType = "snapshot"
)

// Message is sent to websocket clients.
type Message struct {
	Type     MessageType     `json:"type"`
	ClientID string          `json:"client,omitempty"`
	Version  uint64          `json:"version"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn

	// mu serializes writes; gorilla connections allow one writer at a time.
	mu sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages websocket connections for snapshot push.
type Hub struct {
	clients  map[*websocket.Conn]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// hello returns the message sent to a client right after it connects.
	hello func() Message
}

// NewHub creates a hub. hello supplies the greeting for new clients and
// may be nil.
func NewHub(logger *slog.Logger, hello func() Message) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
		hello:  hello,
	}
}

// HandleWebSocket handles websocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}

	// Hold the client's write lock across registration and the greeting so
	// that broadcasts queue behind the hello message.
	c.mu.Lock()
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	if h.hello != nil {
		msg := h.hello()
		msg.ClientID = c.id
		if data, err := json.Marshal(msg); err == nil {
			err = conn.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				h.logger.Debug("websocket hello failed", "client", c.id, "error", err)
			}
		}
	}
	c.mu.Unlock()

	h.logger.Debug("websocket client connected", "client", c.id)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
	h.logger.Debug("websocket client disconnected", "client", c.id)
}

// Broadcast sends a message to all connected clients. Clients that fail to
// receive it are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode push message", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.logger.Debug("websocket write failed", "client", c.id, "error", err)
			h.remove(c.conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
