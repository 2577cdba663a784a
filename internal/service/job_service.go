package service

import (
	"fmt"
	"log"
	"time"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
	bus  *bus.Bus
}

func NewJobService(repo *repository.JobRepository, eventBus *bus.Bus) *JobService {
	return &JobService{Repo: repo, bus: eventBus}
}

// UpdateFinishedEvents marks active events past their end time as finished.
func (s *JobService) UpdateFinishedEvents() error {
	log.Println("Cron Job: Checking for events to mark as 'finished'...")

	eventIDs, err := s.Repo.GetActiveEventIDsPastEndTime()
	if err != nil {
		return fmt.Errorf("cron job: failed to get active events past end time: %w", err)
	}

	if len(eventIDs) == 0 {
		log.Println("Cron Job: No active events found past their end time.")
		return nil
	}

	log.Printf("Cron Job: Found %d events to mark as 'finished'. IDs: %v", len(eventIDs), eventIDs)

	err = s.Repo.UpdateEventStatuses(eventIDs, statusFinished)
	if err != nil {
		return fmt.Errorf("cron job: failed to update event statuses: %w", err)
	}

	s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	s.bus.Publish(bus.Wildcard(bus.EventGetFeed))
	for _, id := range eventIDs {
		s.bus.Publish(bus.Scoped(bus.EventGetByID, id))
	}

	log.Printf("Cron Job: Successfully updated %d events to 'finished'.", len(eventIDs))
	return nil
}

// PurgeOldCanceledEvents deletes canceled events that ended before the cutoff.
func (s *JobService) PurgeOldCanceledEvents(before time.Time) (int64, error) {
	deleted, err := s.Repo.DeleteCanceledEventsOlderThan(before)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	}
	return deleted, nil
}
