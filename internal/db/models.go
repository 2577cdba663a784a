package db

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Language     string
	City         string
	Lat          sql.NullFloat64
	Lon          sql.NullFloat64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Group struct {
	ID          int
	Name        string
	Description string
	Sport       string
	City        string
	CreatorID   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GroupMember struct {
	GroupID  int
	UserID   int
	Role     string
	JoinedAt time.Time
}

type Event struct {
	ID          int
	Code        string
	Title       string
	Description string
	Sport       string
	CreatorID   int
	GroupID     sql.NullInt64
	Capacity    int
	Lat         float64
	Lon         float64
	Address     string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EventParticipant struct {
	EventID  int
	UserID   int
	JoinedAt time.Time
}

type Comment struct {
	ID        int
	EventID   int
	UserID    int
	Body      string
	CreatedAt time.Time
}

type Rating struct {
	EventID   int
	UserID    int
	Stars     int
	CreatedAt time.Time
}

type ChatMessage struct {
	ID        int
	GroupID   int
	UserID    int
	Body      string
	CreatedAt time.Time
}
