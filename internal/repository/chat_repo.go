package repository

import (
	"database/sql"
	"fmt"

	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
)

type ChatRepository struct {
	DB *sql.DB
}

func NewChatRepository(database *sql.DB) *ChatRepository {
	return &ChatRepository{DB: database}
}

func (r *ChatRepository) CreateMessage(msg *db.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (group_id, user_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`
	return r.DB.QueryRow(query, msg.GroupID, msg.UserID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt)
}

// ListForGroup returns the newest messages first so the client can page
// backwards through history.
func (r *ChatRepository) ListForGroup(groupID, limit, offset int) ([]entities.ChatMessageResponse, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, u.name, m.body, m.created_at
		FROM chat_messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(query, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []entities.ChatMessageResponse
	for rows.Next() {
		var m entities.ChatMessageResponse
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.UserName, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
