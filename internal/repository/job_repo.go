package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetActiveEventIDsPastEndTime returns ids of active events whose end time
// has already passed.
func (r *JobRepository) GetActiveEventIDsPastEndTime() ([]int, error) {
	query := `SELECT id FROM events WHERE status = 'active' AND end_time < NOW()`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying active events past end time: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning event ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

func (r *JobRepository) UpdateEventStatuses(ids []int, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating event statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d events to '%s'", rowsAffected, newStatus)
	}
	return nil
}

// DeleteCanceledEventsOlderThan purges canceled events whose end time is
// before the given cutoff.
func (r *JobRepository) DeleteCanceledEventsOlderThan(before time.Time) (int64, error) {
	result, err := r.DB.Exec(`DELETE FROM events WHERE status = 'canceled' AND end_time < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error deleting old canceled events: %w", err)
	}
	return result.RowsAffected()
}
