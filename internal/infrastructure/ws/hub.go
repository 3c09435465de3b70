package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/api/metrics"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 256
)

// HandlerFunc handles one inbound event. ctx is cancelled when the
// connection closes or when the same event arrives again on the client.
type HandlerFunc func(ctx context.Context, c *Client, data json.RawMessage) error

// Hub tracks live connections grouped by session and routes inbound events
// to registered handlers.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]map[string]*Client
	handlers map[string]HandlerFunc
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:      log,
		sessions: make(map[string]map[string]*Client),
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers fn for event. Registering twice replaces the handler.
func (h *Hub) Handle(event string, fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = fn
}

func (h *Hub) handler(event string) (HandlerFunc, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.handlers[event]
	return fn, ok
}

// Serve upgrades the request and blocks until the connection closes. The
// upgrader has already answered the request when an error is returned.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &Client{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		ctx:       ctx,
		cancel:    cancel,
		running:   make(map[string]*run),
		log:       h.log.With().Str("session", shortID(sessionID)).Logger(),
	}

	h.register(c)
	defer h.unregister(c)

	go c.writePump()
	c.readPump()
	return nil
}

// SendToSession sends an event to every connection of a session and
// returns how many connections accepted it.
func (h *Hub) SendToSession(sessionID, event string, data any) int {
	payload, err := encode(event, data)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("dropping unencodable message")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, c := range h.sessions[sessionID] {
		if c.enqueue(payload) {
			sent++
		}
	}
	return sent
}

// Deliver pushes a toast to the session's open connections. Toasts for
// sessions without a connection are discarded.
func (h *Hub) Deliver(toast domain.Toast) {
	if n := h.SendToSession(toast.SessionID, EventToast, toast); n == 0 {
		h.log.Debug().Str("session", shortID(toast.SessionID)).Str("title", toast.Title).Msg("toast not delivered: no live connection")
	}
}

// Connections reports the number of open connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.sessions {
		n += len(clients)
	}
	return n
}

// Close drops every connection. Serve calls return once their read loop
// notices.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.sessions {
		for _, c := range clients {
			c.cancel()
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	clients, ok := h.sessions[c.SessionID]
	if !ok {
		clients = make(map[string]*Client)
		h.sessions[c.SessionID] = clients
	}
	clients[c.ID] = c
	h.mu.Unlock()

	metrics.WebSocketConnections.Inc()
	c.log.Debug().Str("client_id", c.ID).Msg("websocket client registered")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if clients, ok := h.sessions[c.SessionID]; ok {
		delete(clients, c.ID)
		if len(clients) == 0 {
			delete(h.sessions, c.SessionID)
		}
	}
	h.mu.Unlock()

	c.shutdown()
	metrics.WebSocketConnections.Dec()
	c.log.Debug().Str("client_id", c.ID).Msg("websocket client unregistered")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
