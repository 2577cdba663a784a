package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

type CommentRepository interface {
	CreateComment(comment *db.Comment) error
	ListForEvent(eventID int) ([]entities.CommentResponse, error)
	GetCommentByID(id int) (*db.Comment, error)
	DeleteComment(id int) error
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(database *sql.DB) CommentRepository {
	return &commentRepository{db: database}
}

func (r *commentRepository) CreateComment(comment *db.Comment) error {
	query := `
		INSERT INTO comments (event_id, user_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`
	return r.db.QueryRow(query, comment.EventID, comment.UserID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListForEvent(eventID int) ([]entities.CommentResponse, error) {
	query := `
		SELECT c.id, c.event_id, c.user_id, u.name, c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.event_id = $1
		ORDER BY c.created_at ASC`
	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	var comments []entities.CommentResponse
	for rows.Next() {
		var c entities.CommentResponse
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) GetCommentByID(id int) (*db.Comment, error) {
	var c db.Comment
	err := r.db.QueryRow(`SELECT id, event_id, user_id, body, created_at FROM comments WHERE id = $1`, id).
		Scan(&c.ID, &c.EventID, &c.UserID, &c.Body, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying comment %d: %w", id, err)
	}
	return &c, nil
}

func (r *commentRepository) DeleteComment(id int) error {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
