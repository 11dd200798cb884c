package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	ws "github.com/maxxlamenaace/roomio-be/internal/websocket"
)

// WebSocketHandler handles upgrading HTTP connections to WebSocket
// connections for the live room feed.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. Connections made on
// /ws/rooms/{id} receive that room's message frames; connections on /ws
// receive global frames only.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	roomID := chi.URLParam(r, "id")

	client := ws.NewClient(h.hub, conn, roomID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
