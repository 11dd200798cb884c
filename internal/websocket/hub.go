package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and broadcasts frames to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound frames for global broadcast.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of room IDs to the set of clients subscribed to them.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's frame processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			// If the client connected for a specific room, subscribe them.
			if client.RoomID != "" {
				h.addSubscription(client, client.RoomID)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case frame := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- frame:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		}
	}
}

// BroadcastTo sends a frame to all clients subscribed to a room.
func (h *Hub) BroadcastTo(roomID string, frame []byte) {
	if subs, ok := h.subscriptions[roomID]; ok {
		for client := range subs {
			select {
			case client.Send <- frame:
			default:
				close(client.Send)
				delete(h.clients, client)
				delete(h.subscriptions[roomID], client)
			}
		}
	}
}

func (h *Hub) addSubscription(client *Client, roomID string) {
	if h.subscriptions[roomID] == nil {
		h.subscriptions[roomID] = make(map[*Client]bool)
	}
	h.subscriptions[roomID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for roomID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, roomID)
			}
		}
	}
}
