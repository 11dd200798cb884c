package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/maxxlamenaace/roomio-be/internal/models"
)

// RoomServiceProvider defines the interface for room services.
type RoomServiceProvider interface {
	SearchRooms(query string) ([]models.Room, error)
	GetRoomByID(id string) (models.Room, error)
	GetRoomsByHost(hostID string) ([]models.Room, error)
	CreateRoom(hostID, topicName, name, description string) (models.Room, error)
	UpdateRoom(id, topicName, name, description string) (models.Room, error)
	DeleteRoom(id string) error
	GetParticipants(roomID string) ([]models.User, error)
	AddParticipant(roomID, userID string) error
}

// RoomService provides business logic for room management.
type RoomService struct {
	db     *sql.DB
	topics TopicServiceProvider
}

// NewRoomService creates a new RoomService.
func NewRoomService(db *sql.DB, topics TopicServiceProvider) *RoomService {
	return &RoomService{db: db, topics: topics}
}

const roomColumns = `
	r.id, r.host_id, u.username, r.topic_id, t.name, r.name, r.description,
	r.created_at, r.updated_at
	FROM rooms r
	JOIN users u ON u.id = r.host_id
	JOIN topics t ON t.id = r.topic_id`

// scanRoom is a helper to scan a room from a row or rows object.
func scanRoom(scanner interface{ Scan(...interface{}) error }) (models.Room, error) {
	var room models.Room
	var desc sql.NullString

	err := scanner.Scan(
		&room.ID, &room.HostID, &room.HostName, &room.TopicID, &room.TopicName,
		&room.Name, &desc, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return room, err
	}
	room.Description = desc.String
	return room, nil
}

// SearchRooms returns rooms matching the query: topic name AND room name
// must both contain it, or the description alone must contain it. The
// AND binds topic+name together before the OR with description; an empty
// query matches everything.
func (s *RoomService) SearchRooms(query string) ([]models.Room, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(`
		SELECT `+roomColumns+`
		WHERE (LOWER(t.name) LIKE ? AND LOWER(r.name) LIKE ?)
		   OR LOWER(COALESCE(r.description, '')) LIKE ?
		ORDER BY r.updated_at DESC, r.created_at DESC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// GetRoomByID retrieves a single room by its ID.
func (s *RoomService) GetRoomByID(id string) (models.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomColumns+` WHERE r.id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Room{}, ErrNotFound
		}
		return models.Room{}, err
	}
	return room, nil
}

// GetRoomsByHost retrieves every room hosted by the given user.
func (s *RoomService) GetRoomsByHost(hostID string) ([]models.Room, error) {
	rows, err := s.db.Query(`
		SELECT `+roomColumns+`
		WHERE r.host_id = ?
		ORDER BY r.updated_at DESC, r.created_at DESC`, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// CreateRoom creates a room owned by the host, creating the topic on
// first use.
func (s *RoomService) CreateRoom(hostID, topicName, name, description string) (models.Room, error) {
	topic, err := s.topics.GetOrCreateTopic(topicName)
	if err != nil {
		return models.Room{}, err
	}

	id := uuid.New().String()
	stmt, err := s.db.Prepare("INSERT INTO rooms(id, host_id, topic_id, name, description) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.Room{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(id, hostID, topic.ID, name, description); err != nil {
		return models.Room{}, err
	}
	return s.GetRoomByID(id)
}

// UpdateRoom overwrites a room's name, description and topic, creating
// the topic on first use.
func (s *RoomService) UpdateRoom(id, topicName, name, description string) (models.Room, error) {
	topic, err := s.topics.GetOrCreateTopic(topicName)
	if err != nil {
		return models.Room{}, err
	}

	res, err := s.db.Exec(
		"UPDATE rooms SET name = ?, description = ?, topic_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, description, topic.ID, id,
	)
	if err != nil {
		return models.Room{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Room{}, ErrNotFound
	}
	return s.GetRoomByID(id)
}

// DeleteRoom removes a room; its messages and participant rows cascade.
func (s *RoomService) DeleteRoom(id string) error {
	res, err := s.db.Exec("DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetParticipants retrieves the users who have posted in a room.
func (s *RoomService) GetParticipants(roomID string) ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT u.id, u.username, u.created_at
		FROM room_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.room_id = ?
		ORDER BY u.username`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// AddParticipant records that a user has posted in a room. Repeated
// calls are idempotent.
func (s *RoomService) AddParticipant(roomID, userID string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO room_participants(room_id, user_id) VALUES(?, ?)",
		roomID, userID,
	)
	return err
}
