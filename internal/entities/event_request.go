package entities

import "time"

type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sport       string    `json:"sport"`
	GroupID     *int      `json:"group_id,omitempty"`
	Capacity    int       `json:"capacity"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Address     string    `json:"address"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type EventResponse struct {
	ID           int       `json:"id"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Sport        string    `json:"sport"`
	CreatorID    int       `json:"creator_id"`
	CreatorName  string    `json:"creator_name"`
	GroupID      *int      `json:"group_id,omitempty"`
	Capacity     int       `json:"capacity"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Address      string    `json:"address"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	Participants int       `json:"participants"`
	AvgRating    float64   `json:"avg_rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeedEventResponse is an event in the nearby feed, annotated with the
// distance from the requester's position.
type FeedEventResponse struct {
	EventResponse
	DistanceKm float64 `json:"distance_km"`
}

type EventFilter struct {
	Sport  string
	From   *time.Time
	Until  *time.Time
	Status string
	Limit  int
	Offset int
}
