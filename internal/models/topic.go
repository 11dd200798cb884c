package models

// Topic is a reusable category tag applied to rooms. Topics are created
// lazily the first time a room names them and are never deleted.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// RoomCount is only populated by listing queries.
	RoomCount int `json:"roomCount,omitempty"`
}
