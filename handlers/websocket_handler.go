package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The app serves a local single-user frontend.
		return true
	},
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs upgrades the connection and attaches it to the bracket feed.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		slog.Warn("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}
	h.hub.Register(conn)
}
