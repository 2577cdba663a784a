package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

type GroupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(database *sql.DB) *GroupRepository {
	return &GroupRepository{DB: database}
}

const groupSelectColumns = `
	g.id, g.name, g.description, g.sport, g.city, g.creator_id,
	(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS members,
	g.created_at, g.updated_at`

func (r *GroupRepository) CreateGroup(group *db.Group) error {
	query := `
		INSERT INTO groups (name, description, sport, city, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRow(query,
		group.Name, group.Description, group.Sport, group.City, group.CreatorID,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
}

func (r *GroupRepository) GetGroupByID(id int) (*entities.GroupResponse, error) {
	var res entities.GroupResponse
	query := `SELECT` + groupSelectColumns + ` FROM groups g WHERE g.id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&res.ID, &res.Name, &res.Description, &res.Sport, &res.City, &res.CreatorID,
		&res.Members, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying group %d: %w", id, err)
	}
	return &res, nil
}

func (r *GroupRepository) ListGroups(sport, city string, limit, offset int) (*entities.GroupsList, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if sport != "" {
		where += " AND g.sport = $" + strconv.Itoa(idx)
		args = append(args, sport)
		idx++
	}
	if city != "" {
		where += " AND g.city = $" + strconv.Itoa(idx)
		args = append(args, city)
		idx++
	}

	var total int64
	if err := r.DB.QueryRow("SELECT COUNT(*) FROM groups g"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("error counting groups: %w", err)
	}

	query := `SELECT` + groupSelectColumns + ` FROM groups g` + where +
		" ORDER BY g.created_at DESC LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying groups: %w", err)
	}
	defer rows.Close()

	list := &entities.GroupsList{Total: total, Limit: limit, Offset: offset}
	for rows.Next() {
		var res entities.GroupResponse
		err := rows.Scan(
			&res.ID, &res.Name, &res.Description, &res.Sport, &res.City, &res.CreatorID,
			&res.Members, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning group row: %w", err)
		}
		list.Groups = append(list.Groups, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating group rows: %w", err)
	}
	return list, nil
}

func (r *GroupRepository) UpdateGroup(group *db.Group) error {
	query := `
		UPDATE groups
		SET name = $1, description = $2, sport = $3, city = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`
	err := r.DB.QueryRow(query,
		group.Name, group.Description, group.Sport, group.City, group.ID,
	).Scan(&group.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("error updating group %d: %w", group.ID, err)
	}
	return nil
}

func (r *GroupRepository) GetCreatorID(groupID int) (int, error) {
	var creatorID int
	err := r.DB.QueryRow(`SELECT creator_id FROM groups WHERE id = $1`, groupID).Scan(&creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("error querying group creator: %w", err)
	}
	return creatorID, nil
}

func (r *GroupRepository) JoinGroup(groupID, userID int, role string) error {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking group %d: %w", groupID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}

	result, err := r.DB.Exec(`
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, role)
	if err != nil {
		return fmt.Errorf("error joining group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrAlreadyJoined
	}
	return nil
}

func (r *GroupRepository) LeaveGroup(groupID, userID int) error {
	result, err := r.DB.Exec(`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("error leaving group: %w", err)
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

func (r *GroupRepository) GetMembers(groupID int) ([]entities.GroupMemberResponse, error) {
	query := `
		SELECT gm.user_id, u.name, gm.role, gm.joined_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at ASC`
	rows, err := r.DB.Query(query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error querying group members: %w", err)
	}
	defer rows.Close()

	var members []entities.GroupMemberResponse
	for rows.Next() {
		var m entities.GroupMemberResponse
		if err := rows.Scan(&m.UserID, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning group member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *GroupRepository) IsMember(groupID, userID int) (bool, error) {
	var member bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("error checking membership: %w", err)
	}
	return member, nil
}

// GetGroupBusyIntervals returns the busy set: every active event that any
// member of the group participates in or created, overlapping the window even
// partially, deduplicated by event id.
func (r *GroupRepository) GetGroupBusyIntervals(groupID int, from, until time.Time) ([]entities.Interval, error) {
	query := `
		SELECT e.start_time, e.end_time
		FROM events e
		WHERE e.status = 'active'
		AND e.start_time < $3
		AND e.end_time > $2
		AND (
			EXISTS (
				SELECT 1 FROM event_participants ep
				JOIN group_members gm ON gm.user_id = ep.user_id AND gm.group_id = $1
				WHERE ep.event_id = e.id
			)
			OR EXISTS (
				SELECT 1 FROM group_members gm
				WHERE gm.group_id = $1 AND gm.user_id = e.creator_id
			)
		)
		ORDER BY e.start_time ASC`

	rows, err := r.DB.Query(query, groupID, from, until)
	if err != nil {
		return nil, fmt.Errorf("error querying busy intervals: %w", err)
	}
	defer rows.Close()

	var intervals []entities.Interval
	for rows.Next() {
		var iv entities.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("error scanning busy interval: %w", err)
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}
