package service

import (
	"fmt"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/entities"
	"fitnesstime/internal/repository"
)

type RatingService struct {
	Repo repository.RatingRepository
	bus  *bus.Bus
}

func NewRatingService(repo repository.RatingRepository, eventBus *bus.Bus) *RatingService {
	return &RatingService{Repo: repo, bus: eventBus}
}

func (s *RatingService) GetSummary(eventID int, userID *int) (*entities.RatingSummary, error) {
	return s.Repo.GetSummary(eventID, userID)
}

func (s *RatingService) RateEvent(eventID, userID, stars int) (*entities.RatingSummary, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("stars must be between 1 and 5")
	}

	if err := s.Repo.UpsertRating(eventID, userID, stars); err != nil {
		return nil, err
	}

	// The detail, list and feed reads all render the average, so every one
	// of them goes stale alongside the rating read itself.
	s.bus.Publish(bus.Scoped(bus.RatingGetForEvent, eventID))
	s.bus.Publish(bus.Scoped(bus.EventGetByID, eventID))
	s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	s.bus.Publish(bus.Wildcard(bus.EventGetFeed))

	return s.Repo.GetSummary(eventID, &userID)
}
