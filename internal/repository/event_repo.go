package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

type EventRepository interface {
	CreateEvent(event *db.Event) error
	GetEventByID(id int) (*entities.EventResponse, error)
	ListEvents(filter entities.EventFilter) (*entities.EventsList, error)
	ListUpcomingInBox(minLat, maxLat, minLon, maxLon float64) ([]entities.EventResponse, error)
	UpdateEvent(event *db.Event) error
	SetEventStatus(id int, status string) error
	GetEventRow(id int) (*db.Event, error)
	JoinEvent(eventID, userID int) error
	LeaveEvent(eventID, userID int) error
	GetParticipants(eventID int) ([]entities.GroupMemberResponse, error)
	GetParticipantContacts(eventID int) ([]db.User, error)
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(database *sql.DB) EventRepository {
	return &eventRepository{DB: database}
}

const eventSelectColumns = `
	e.id, e.code, e.title, e.description, e.sport, e.creator_id, u.name AS creator_name,
	e.group_id, e.capacity, e.lat, e.lon, e.address, e.start_time, e.end_time, e.status,
	(SELECT COUNT(*) FROM event_participants ep WHERE ep.event_id = e.id) AS participants,
	COALESCE((SELECT AVG(rt.stars) FROM ratings rt WHERE rt.event_id = e.id), 0) AS avg_rating,
	e.created_at, e.updated_at`

func scanEventRow(scanner interface{ Scan(...interface{}) error }) (*entities.EventResponse, error) {
	var res entities.EventResponse
	var groupID sql.NullInt64
	err := scanner.Scan(
		&res.ID, &res.Code, &res.Title, &res.Description, &res.Sport, &res.CreatorID, &res.CreatorName,
		&groupID, &res.Capacity, &res.Lat, &res.Lon, &res.Address, &res.StartTime, &res.EndTime, &res.Status,
		&res.Participants, &res.AvgRating, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if groupID.Valid {
		id := int(groupID.Int64)
		res.GroupID = &id
	}
	return &res, nil
}

func (r *eventRepository) CreateEvent(event *db.Event) error {
	query := `
		INSERT INTO events
		(code, title, description, sport, creator_id, group_id, capacity, lat, lon, address, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRow(query,
		event.Code, event.Title, event.Description, event.Sport, event.CreatorID, event.GroupID,
		event.Capacity, event.Lat, event.Lon, event.Address, event.StartTime, event.EndTime, event.Status,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) GetEventByID(id int) (*entities.EventResponse, error) {
	query := `
		SELECT` + eventSelectColumns + `
		FROM events e
		JOIN users u ON u.id = e.creator_id
		WHERE e.id = $1`
	res, err := scanEventRow(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying event %d: %w", id, err)
	}
	return res, nil
}

func (r *eventRepository) ListEvents(filter entities.EventFilter) (*entities.EventsList, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filter.Sport != "" {
		where += " AND e.sport = $" + strconv.Itoa(idx)
		args = append(args, filter.Sport)
		idx++
	}
	if filter.Status != "" {
		where += " AND e.status = $" + strconv.Itoa(idx)
		args = append(args, filter.Status)
		idx++
	}
	if filter.From != nil {
		where += " AND e.end_time > $" + strconv.Itoa(idx)
		args = append(args, *filter.From)
		idx++
	}
	if filter.Until != nil {
		where += " AND e.start_time < $" + strconv.Itoa(idx)
		args = append(args, *filter.Until)
		idx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM events e" + where
	if err := r.DB.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("error counting events: %w", err)
	}

	query := `
		SELECT` + eventSelectColumns + `
		FROM events e
		JOIN users u ON u.id = e.creator_id` + where +
		" ORDER BY e.start_time ASC LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	list := &entities.EventsList{Total: total, Limit: filter.Limit, Offset: filter.Offset}
	for rows.Next() {
		res, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		list.Events = append(list.Events, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating event rows: %w", err)
	}
	return list, nil
}

// ListUpcomingInBox returns upcoming active events inside a lat/lon bounding
// box. The box is a coarse pre-filter; the service applies the exact distance
// cut afterwards.
func (r *eventRepository) ListUpcomingInBox(minLat, maxLat, minLon, maxLon float64) ([]entities.EventResponse, error) {
	query := `
		SELECT` + eventSelectColumns + `
		FROM events e
		JOIN users u ON u.id = e.creator_id
		WHERE e.status = 'active' AND e.start_time > NOW()
		AND e.lat BETWEEN $1 AND $2
		AND e.lon BETWEEN $3 AND $4
		ORDER BY e.start_time ASC`

	rows, err := r.DB.Query(query, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("error querying event feed: %w", err)
	}
	defer rows.Close()

	var events []entities.EventResponse
	for rows.Next() {
		res, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning feed row: %w", err)
		}
		events = append(events, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating feed rows: %w", err)
	}
	return events, nil
}

func (r *eventRepository) UpdateEvent(event *db.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, sport = $3, capacity = $4, lat = $5, lon = $6,
			address = $7, start_time = $8, end_time = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`
	err := r.DB.QueryRow(query,
		event.Title, event.Description, event.Sport, event.Capacity, event.Lat, event.Lon,
		event.Address, event.StartTime, event.EndTime, event.ID,
	).Scan(&event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("error updating event %d: %w", event.ID, err)
	}
	return nil
}

func (r *eventRepository) SetEventStatus(id int, status string) error {
	result, err := r.DB.Exec(`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error setting event %d status: %w", id, err)
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

func (r *eventRepository) GetEventRow(id int) (*db.Event, error) {
	var event db.Event
	query := `
		SELECT id, code, title, description, sport, creator_id, group_id, capacity, lat, lon, address,
			start_time, end_time, status, created_at, updated_at
		FROM events WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&event.ID, &event.Code, &event.Title, &event.Description, &event.Sport, &event.CreatorID,
		&event.GroupID, &event.Capacity, &event.Lat, &event.Lon, &event.Address,
		&event.StartTime, &event.EndTime, &event.Status, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying event %d: %w", id, err)
	}
	return &event, nil
}

// JoinEvent adds the user inside one transaction, locking the event row so
// two concurrent joins cannot both pass the capacity check.
func (r *eventRepository) JoinEvent(eventID, userID int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting join transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	var status string
	err = tx.QueryRow(`SELECT capacity, status FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("error locking event %d: %w", eventID, err)
	}
	if status != "active" {
		return apperrors.ErrNotFound
	}

	var joined bool
	err = tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&joined)
	if err != nil {
		return fmt.Errorf("error checking participation: %w", err)
	}
	if joined {
		return apperrors.ErrAlreadyJoined
	}

	var count int
	err = tx.QueryRow(`SELECT COUNT(*) FROM event_participants WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return fmt.Errorf("error counting participants: %w", err)
	}
	if capacity > 0 && count >= capacity {
		return apperrors.ErrEventFull
	}

	_, err = tx.Exec(`INSERT INTO event_participants (event_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
		eventID, userID)
	if err != nil {
		return fmt.Errorf("error inserting participant: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepository) LeaveEvent(eventID, userID int) error {
	result, err := r.DB.Exec(`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error removing participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotMember
	}
	return nil
}

func (r *eventRepository) GetParticipants(eventID int) ([]entities.GroupMemberResponse, error) {
	query := `
		SELECT ep.user_id, u.name, 'participant', ep.joined_at
		FROM event_participants ep
		JOIN users u ON u.id = ep.user_id
		WHERE ep.event_id = $1
		ORDER BY ep.joined_at ASC`
	rows, err := r.DB.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying participants: %w", err)
	}
	defer rows.Close()

	var participants []entities.GroupMemberResponse
	for rows.Next() {
		var p entities.GroupMemberResponse
		if err := rows.Scan(&p.UserID, &p.Name, &p.Role, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// GetParticipantContacts returns contact details for notification fan-out
// when an event changes.
func (r *eventRepository) GetParticipantContacts(eventID int) ([]db.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.language
		FROM event_participants ep
		JOIN users u ON u.id = ep.user_id
		WHERE ep.event_id = $1`
	rows, err := r.DB.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying participant contacts: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Language); err != nil {
			return nil, fmt.Errorf("error scanning participant contact: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
