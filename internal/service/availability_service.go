package service

import (
	"fmt"
	"log"
	"time"

	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

// BusyIntervalSource supplies the committed events of a group's members
// within a window.
type BusyIntervalSource interface {
	GetGroupBusyIntervals(groupID int, from, until time.Time) ([]entities.Interval, error)
	GetGroupByID(id int) (*entities.GroupResponse, error)
}

type AvailabilityService struct {
	Repo BusyIntervalSource
}

func NewAvailabilityService(repo BusyIntervalSource) *AvailabilityService {
	return &AvailabilityService{Repo: repo}
}

// GroupFreeIntervals computes the free slots shared by all members of a
// group within [from, until]. Pass minGap <= 0 to use the default threshold.
func (s *AvailabilityService) GroupFreeIntervals(groupID int, from, until time.Time, minGap time.Duration) (*entities.FreeIntervalsResponse, error) {
	if from.After(until) {
		return nil, apperrors.ErrInvalidWindow
	}
	if minGap <= 0 {
		minGap = DefaultMinGap
	}

	if _, err := s.Repo.GetGroupByID(groupID); err != nil {
		return nil, err
	}

	busy, err := s.Repo.GetGroupBusyIntervals(groupID, from, until)
	if err != nil {
		log.Printf("Error from GetGroupBusyIntervals: %v", err)
		return nil, fmt.Errorf("internal error computing free intervals: %w", err)
	}

	free, err := ComputeFreeIntervals(busy, from, until, minGap)
	if err != nil {
		return nil, err
	}

	return &entities.FreeIntervalsResponse{
		GroupID:       groupID,
		From:          from,
		Until:         until,
		MinGapMinutes: int(minGap / time.Minute),
		FreeIntervals: free,
	}, nil
}
