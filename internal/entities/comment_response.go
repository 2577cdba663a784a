package entities

import "time"

type CommentRequest struct {
	Body string `json:"body"`
}

type CommentResponse struct {
	ID        int       `json:"id"`
	EventID   int       `json:"event_id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type RatingRequest struct {
	Stars int `json:"stars"`
}

type RatingSummary struct {
	EventID   int     `json:"event_id"`
	AvgStars  float64 `json:"avg_stars"`
	Votes     int     `json:"votes"`
	UserStars *int    `json:"user_stars,omitempty"`
}

type ChatMessageRequest struct {
	Body string `json:"body"`
}

type ChatMessageResponse struct {
	ID        int       `json:"id"`
	GroupID   int       `json:"group_id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
