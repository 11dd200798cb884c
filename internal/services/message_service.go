package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/maxxlamenaace/roomio-be/internal/models"
)

// MessageServiceProvider defines the interface for message services.
type MessageServiceProvider interface {
	CreateMessage(roomID, userID, body string) (models.Message, error)
	GetMessageByID(id string) (models.Message, error)
	GetMessagesByRoom(roomID string) ([]models.Message, error)
	GetMessagesByUser(userID string) ([]models.Message, error)
	SearchMessages(query string) ([]models.Message, error)
	DeleteMessage(id string) error
}

// MessageService provides business logic for room messages.
type MessageService struct {
	db *sql.DB
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *sql.DB) *MessageService {
	return &MessageService{db: db}
}

const messageColumns = `
	m.id, m.room_id, m.user_id, u.username, m.body, m.created_at
	FROM messages m
	JOIN users u ON u.id = m.user_id`

func scanMessage(scanner interface{ Scan(...interface{}) error }) (models.Message, error) {
	var msg models.Message
	err := scanner.Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Username, &msg.Body, &msg.CreatedAt)
	return msg, err
}

func (s *MessageService) queryMessages(query string, args ...interface{}) ([]models.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// CreateMessage stores a new message posted by a user in a room.
func (s *MessageService) CreateMessage(roomID, userID, body string) (models.Message, error) {
	msg := models.Message{
		ID:     uuid.New().String(),
		RoomID: roomID,
		UserID: userID,
		Body:   body,
	}

	stmt, err := s.db.Prepare("INSERT INTO messages(id, room_id, user_id, body) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.Message{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(msg.ID, msg.RoomID, msg.UserID, msg.Body); err != nil {
		return models.Message{}, err
	}
	return s.GetMessageByID(msg.ID)
}

// GetMessageByID retrieves a single message by its ID.
func (s *MessageService) GetMessageByID(id string) (models.Message, error) {
	row := s.db.QueryRow(`SELECT `+messageColumns+` WHERE m.id = ?`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, err
	}
	return msg, nil
}

// GetMessagesByRoom retrieves a room's conversation in insertion order.
func (s *MessageService) GetMessagesByRoom(roomID string) ([]models.Message, error) {
	return s.queryMessages(`
		SELECT `+messageColumns+`
		WHERE m.room_id = ?
		ORDER BY m.created_at ASC, m.rowid ASC`, roomID)
}

// GetMessagesByUser retrieves a user's authored messages, most recent first.
func (s *MessageService) GetMessagesByUser(userID string) ([]models.Message, error) {
	return s.queryMessages(`
		SELECT `+messageColumns+`
		WHERE m.user_id = ?
		ORDER BY m.created_at DESC, m.rowid DESC`, userID)
}

// SearchMessages retrieves messages whose room's topic name contains the
// query, most recent first.
func (s *MessageService) SearchMessages(query string) ([]models.Message, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryMessages(`
		SELECT `+messageColumns+`
		JOIN rooms r ON r.id = m.room_id
		JOIN topics t ON t.id = r.topic_id
		WHERE LOWER(t.name) LIKE ?
		ORDER BY m.created_at DESC, m.rowid DESC`, pattern)
}

// DeleteMessage removes a message.
func (s *MessageService) DeleteMessage(id string) error {
	res, err := s.db.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
