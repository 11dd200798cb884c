package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/maxxlamenaace/roomio-be/internal/auth"
	"github.com/maxxlamenaace/roomio-be/internal/models"
	"github.com/maxxlamenaace/roomio-be/internal/services"
	ws "github.com/maxxlamenaace/roomio-be/internal/websocket"
)

// RoomHandler handles room browsing, posting and the host-only mutations.
type RoomHandler struct {
	rooms    services.RoomServiceProvider
	topics   services.TopicServiceProvider
	messages services.MessageServiceProvider
	events   services.EventServiceProvider
	hub      *ws.Hub
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms services.RoomServiceProvider, topics services.TopicServiceProvider, messages services.MessageServiceProvider, events services.EventServiceProvider, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{rooms: rooms, topics: topics, messages: messages, events: events, hub: hub}
}

// View handles the room detail request: the room, its conversation in
// insertion order, and its participants.
func (h *RoomHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	room, err := h.rooms.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("room_id", id).Msg("Failed to load room")
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return
	}

	conversation, err := h.messages.GetMessagesByRoom(id)
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("Failed to load conversation")
		http.Error(w, "Failed to load conversation", http.StatusInternalServerError)
		return
	}

	participants, err := h.rooms.GetParticipants(id)
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("Failed to load participants")
		http.Error(w, "Failed to load participants", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"room":         room,
		"conversation": conversation,
		"participants": participants,
	})
}

// Post handles posting a message to a room. The author joins the room's
// participants (idempotently) and is redirected back to the room view,
// preventing duplicate submission on refresh.
func (h *RoomHandler) Post(w http.ResponseWriter, r *http.Request) {
	claims := auth.CurrentClaims(r)
	if claims == nil {
		http.Redirect(w, r, "/login/", http.StatusSeeOther)
		return
	}

	id := chi.URLParam(r, "id")
	room, err := h.rooms.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("room_id", id).Msg("Failed to load room")
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return
	}

	msg, err := h.messages.CreateMessage(room.ID, claims.UserID, r.FormValue("body"))
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("Failed to create message")
		http.Error(w, "Failed to post message", http.StatusInternalServerError)
		return
	}

	if err := h.rooms.AddParticipant(room.ID, claims.UserID); err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Str("user_id", claims.UserID).Msg("Failed to add participant")
		http.Error(w, "Failed to join room", http.StatusInternalServerError)
		return
	}

	if err := h.events.CreateEvent("message.create", "info", claims.Username+" posted in "+room.Name, &room.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record message event")
	}

	if frame, err := json.Marshal(ws.Frame{Action: "message.create", Payload: msg}); err == nil {
		h.hub.BroadcastTo(room.ID, frame)
	}

	http.Redirect(w, r, "/room/"+room.ID+"/", http.StatusSeeOther)
}

// CreateForm renders the room creation view.
func (h *RoomHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.GetAllTopics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve topics")
		http.Error(w, "Failed to retrieve topics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"page": "create-room", "topics": topics})
}

// Create handles room creation: the topic is created on first use and
// the requester becomes the host.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.CurrentClaims(r)

	room, err := h.rooms.CreateRoom(claims.UserID, r.FormValue("topic"), r.FormValue("name"), r.FormValue("description"))
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to create room")
		http.Error(w, "Failed to create room", http.StatusInternalServerError)
		return
	}

	if err := h.events.CreateEvent("room.create", "info", claims.Username+" created room "+room.Name, &room.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record room event")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadOwnedRoom loads a room and verifies the requester hosts it. It
// writes the error response and returns false when the handler should
// stop: a graceful 404 on a missing room, 403 when the requester is not
// the host.
func (h *RoomHandler) loadOwnedRoom(w http.ResponseWriter, r *http.Request) (models.Room, bool) {
	id := chi.URLParam(r, "id")
	room, err := h.rooms.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return models.Room{}, false
		}
		log.Error().Err(err).Str("room_id", id).Msg("Failed to load room")
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return models.Room{}, false
	}

	claims := auth.CurrentClaims(r)
	if !auth.IsRoomHost(claims.UserID, room) {
		http.Error(w, "Not allowed!", http.StatusForbidden)
		return models.Room{}, false
	}
	return room, true
}

// UpdateForm renders the room edit view for the host.
func (h *RoomHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadOwnedRoom(w, r)
	if !ok {
		return
	}

	topics, err := h.topics.GetAllTopics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve topics")
		http.Error(w, "Failed to retrieve topics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"page": "update-room", "room": room, "topics": topics})
}

// Update overwrites the room's name, description and topic. Only the
// host may update a room.
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadOwnedRoom(w, r)
	if !ok {
		return
	}

	if _, err := h.rooms.UpdateRoom(room.ID, r.FormValue("topic"), r.FormValue("name"), r.FormValue("description")); err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("Failed to update room")
		http.Error(w, "Failed to update room", http.StatusInternalServerError)
		return
	}

	claims := auth.CurrentClaims(r)
	if err := h.events.CreateEvent("room.update", "info", claims.Username+" updated room "+r.FormValue("name"), &room.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record room event")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteConfirm renders the deletion confirmation view for the host.
func (h *RoomHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadOwnedRoom(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"page":    "confirm-delete",
		"object":  room.Name,
		"confirm": "Are you sure you want to delete \"" + room.Name + "\"?",
	})
}

// Delete removes the room. Only the host may delete a room.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadOwnedRoom(w, r)
	if !ok {
		return
	}

	if err := h.rooms.DeleteRoom(room.ID); err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("Failed to delete room")
		http.Error(w, "Failed to delete room", http.StatusInternalServerError)
		return
	}

	claims := auth.CurrentClaims(r)
	if err := h.events.CreateEvent("room.delete", "info", claims.Username+" deleted room "+room.Name, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record room event")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
