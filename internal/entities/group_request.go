package entities

import "time"

type GroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Sport       string `json:"sport"`
	City        string `json:"city"`
}

type GroupResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Sport       string    `json:"sport"`
	City        string    `json:"city"`
	CreatorID   int       `json:"creator_id"`
	Members     int       `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type GroupsList struct {
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Groups []GroupResponse `json:"groups"`
}

type GroupMemberResponse struct {
	UserID   int       `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
