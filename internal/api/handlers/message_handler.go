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
)

// MessageHandler handles author-only message deletion.
type MessageHandler struct {
	messages services.MessageServiceProvider
	events   services.EventServiceProvider
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages services.MessageServiceProvider, events services.EventServiceProvider) *MessageHandler {
	return &MessageHandler{messages: messages, events: events}
}

// loadOwnedMessage loads a message and verifies the requester authored
// it, writing a 404 or 403 otherwise.
func (h *MessageHandler) loadOwnedMessage(w http.ResponseWriter, r *http.Request) (models.Message, bool) {
	id := chi.URLParam(r, "id")
	msg, err := h.messages.GetMessageByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Message not found", http.StatusNotFound)
			return models.Message{}, false
		}
		log.Error().Err(err).Str("message_id", id).Msg("Failed to load message")
		http.Error(w, "Failed to load message", http.StatusInternalServerError)
		return models.Message{}, false
	}

	claims := auth.CurrentClaims(r)
	if !auth.IsMessageSender(claims.UserID, msg) {
		http.Error(w, "Not allowed!", http.StatusForbidden)
		return models.Message{}, false
	}
	return msg, true
}

// DeleteConfirm renders the deletion confirmation view for the author.
func (h *MessageHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.loadOwnedMessage(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"page":    "confirm-delete",
		"object":  msg.Body,
		"confirm": "Are you sure you want to delete this message?",
	})
}

// Delete removes the message. Only the author may delete a message.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.loadOwnedMessage(w, r)
	if !ok {
		return
	}

	if err := h.messages.DeleteMessage(msg.ID); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to delete message")
		http.Error(w, "Failed to delete message", http.StatusInternalServerError)
		return
	}

	claims := auth.CurrentClaims(r)
	if err := h.events.CreateEvent("message.delete", "info", claims.Username+" deleted a message", &msg.RoomID); err != nil {
		log.Warn().Err(err).Msg("Failed to record message event")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
