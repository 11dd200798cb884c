package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/maxxlamenaace/roomio-be/internal/services"
)

// ProfileHandler serves the read-only user profile view.
type ProfileHandler struct {
	users    services.UserServiceProvider
	rooms    services.RoomServiceProvider
	messages services.MessageServiceProvider
	topics   services.TopicServiceProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users services.UserServiceProvider, rooms services.RoomServiceProvider, messages services.MessageServiceProvider, topics services.TopicServiceProvider) *ProfileHandler {
	return &ProfileHandler{users: users, rooms: rooms, messages: messages, topics: topics}
}

// View handles the profile request: the user, their hosted rooms, their
// authored messages, and the full topic list.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to load user")
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	rooms, err := h.rooms.GetRoomsByHost(id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to load hosted rooms")
		http.Error(w, "Failed to load rooms", http.StatusInternalServerError)
		return
	}

	roomMessages, err := h.messages.GetMessagesByUser(id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to load authored messages")
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}

	topics, err := h.topics.GetAllTopics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve topics")
		http.Error(w, "Failed to retrieve topics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":         user,
		"rooms":        rooms,
		"roomMessages": roomMessages,
		"topics":       topics,
	})
}
