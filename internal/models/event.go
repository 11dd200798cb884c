package models

import "time"

// Event represents a loggable action in the forum's activity feed.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g. "room.create", "message.create"
	Level     string    `json:"level"` // e.g. "info", "warn"
	Message   string    `json:"message"`
	RoomID    *string   `json:"roomId,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"createdAt"`
}
