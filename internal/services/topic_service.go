package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/maxxlamenaace/roomio-be/internal/models"
)

// TopicServiceProvider defines the interface for topic services.
type TopicServiceProvider interface {
	GetOrCreateTopic(name string) (models.Topic, error)
	GetAllTopics() ([]models.Topic, error)
}

// TopicService provides business logic for topic tags.
type TopicService struct {
	db *sql.DB
}

// NewTopicService creates a new TopicService.
func NewTopicService(db *sql.DB) *TopicService {
	return &TopicService{db: db}
}

// GetOrCreateTopic returns the topic with the given exact name, creating
// it on first use. The UNIQUE constraint on the name arbitrates
// concurrent creation: an insert conflict means another request won the
// race, and the following select fetches the existing row.
func (s *TopicService) GetOrCreateTopic(name string) (models.Topic, error) {
	_, err := s.db.Exec(
		"INSERT INTO topics(id, name) VALUES(?, ?) ON CONFLICT(name) DO NOTHING",
		uuid.New().String(), name,
	)
	if err != nil {
		return models.Topic{}, err
	}

	var topic models.Topic
	row := s.db.QueryRow("SELECT id, name FROM topics WHERE name = ?", name)
	if err := row.Scan(&topic.ID, &topic.Name); err != nil {
		return models.Topic{}, err
	}
	return topic, nil
}

// GetAllTopics retrieves every topic with the number of rooms tagged by it.
func (s *TopicService) GetAllTopics() ([]models.Topic, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, COUNT(r.id)
		FROM topics t
		LEFT JOIN rooms r ON r.topic_id = t.id
		GROUP BY t.id, t.name
		ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var topic models.Topic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.RoomCount); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}
