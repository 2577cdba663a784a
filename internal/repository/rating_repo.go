package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"fitnesstime/internal/entities"
)

type RatingRepository interface {
	UpsertRating(eventID, userID, stars int) error
	GetSummary(eventID int, userID *int) (*entities.RatingSummary, error)
}

type ratingRepository struct {
	DB *sql.DB
}

func NewRatingRepository(database *sql.DB) RatingRepository {
	return &ratingRepository{DB: database}
}

// UpsertRating stores one rating per (event, user), replacing a previous vote.
func (r *ratingRepository) UpsertRating(eventID, userID, stars int) error {
	query := `
		INSERT INTO ratings (event_id, user_id, stars, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (event_id, user_id) DO UPDATE SET stars = EXCLUDED.stars, created_at = NOW()`
	_, err := r.DB.Exec(query, eventID, userID, stars)
	if err != nil {
		return fmt.Errorf("error upserting rating: %w", err)
	}
	return nil
}

func (r *ratingRepository) GetSummary(eventID int, userID *int) (*entities.RatingSummary, error) {
	summary := &entities.RatingSummary{EventID: eventID}
	err := r.DB.QueryRow(`
		SELECT COALESCE(AVG(stars), 0), COUNT(*)
		FROM ratings WHERE event_id = $1`, eventID).
		Scan(&summary.AvgStars, &summary.Votes)
	if err != nil {
		return nil, fmt.Errorf("error querying rating summary: %w", err)
	}

	if userID != nil {
		var stars int
		err := r.DB.QueryRow(`SELECT stars FROM ratings WHERE event_id = $1 AND user_id = $2`, eventID, *userID).
			Scan(&stars)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("error querying user rating: %w", err)
		}
		if err == nil {
			summary.UserStars = &stars
		}
	}
	return summary, nil
}
