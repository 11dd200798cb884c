package models

import "time"

// Room is a named, topic-tagged discussion thread owned by one user (the host).
type Room struct {
	ID          string    `json:"id"`
	HostID      string    `json:"hostId"`
	HostName    string    `json:"hostName"`
	TopicID     string    `json:"-"`
	TopicName   string    `json:"topic"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
