package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Event is pushed to every connected bracket viewer.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventBracketSeeded  = "BRACKET_SEEDED"
	EventMatchRecorded  = "MATCH_RECORDED"
	EventBracketReset   = "BRACKET_RESET"
	EventMatchScheduled = "MATCH_SCHEDULED"
)

// Hub fans bracket events out to websocket clients. There is a single feed:
// the app manages one bracket, so there are no rooms to key on.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	clients map[*Client]bool
	mu      sync.RWMutex

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("bracket feed client connected", slog.Int("clients", h.clientCount()))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("bracket feed client disconnected", slog.Int("clients", h.clientCount()))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop the frame rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements the engine's notifier callback. Marshal errors are
// logged and swallowed: a failed notification must never fail the mutation
// that triggered it.
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal bracket event", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	h.broadcast <- data
}

// Register attaches a new websocket connection to the feed and starts its pumps.
func (h *Hub) Register(conn *websocket.Conn) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 32)}
	h.register <- client
	go client.writePump()
	go client.readPump()
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// The feed is one-way; inbound frames only keep the connection alive.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("bracket feed read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
