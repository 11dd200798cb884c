package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/maxxlamenaace/roomio-be/internal/services"
)

// HomeHandler serves the room listing/search view and the side feeds.
type HomeHandler struct {
	rooms    services.RoomServiceProvider
	topics   services.TopicServiceProvider
	messages services.MessageServiceProvider
	events   services.EventServiceProvider
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(rooms services.RoomServiceProvider, topics services.TopicServiceProvider, messages services.MessageServiceProvider, events services.EventServiceProvider) *HomeHandler {
	return &HomeHandler{rooms: rooms, topics: topics, messages: messages, events: events}
}

// Home handles the listing/search request. The query filters rooms where
// topic and name both contain it, or the description alone does; topics
// are returned unfiltered, and the message feed is filtered by the
// room's topic name.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	rooms, err := h.rooms.SearchRooms(q)
	if err != nil {
		log.Error().Err(err).Str("query", q).Msg("Failed to search rooms")
		http.Error(w, "Failed to retrieve rooms", http.StatusInternalServerError)
		return
	}

	topics, err := h.topics.GetAllTopics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve topics")
		http.Error(w, "Failed to retrieve topics", http.StatusInternalServerError)
		return
	}

	roomMessages, err := h.messages.SearchMessages(q)
	if err != nil {
		log.Error().Err(err).Str("query", q).Msg("Failed to search messages")
		http.Error(w, "Failed to retrieve messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rooms":        rooms,
		"topics":       topics,
		"roomMessages": roomMessages,
	})
}

// Topics handles the request for the full topic list with room counts.
func (h *HomeHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.GetAllTopics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve topics")
		http.Error(w, "Failed to retrieve topics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(topics)
}

// Activity handles the request for the recent activity feed.
func (h *HomeHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.events.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		http.Error(w, "Failed to retrieve events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
