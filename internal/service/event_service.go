package service

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
	"fitnesstime/internal/repository"
	"fitnesstime/internal/utils"
)

const (
	statusActive   = "active"
	statusCanceled = "canceled"
	statusFinished = "finished"
)

type EventService struct {
	Repo   repository.EventRepository
	sender *SenderService
	bus    *bus.Bus
}

func NewEventService(repo repository.EventRepository, sender *SenderService, eventBus *bus.Bus) *EventService {
	return &EventService{Repo: repo, sender: sender, bus: eventBus}
}

func (s *EventService) GetEventByID(id int) (*entities.EventResponse, error) {
	return s.Repo.GetEventByID(id)
}

func (s *EventService) ListEvents(filter entities.EventFilter) (*entities.EventsList, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Repo.ListEvents(filter)
}

// FeedNearby lists upcoming events around a position, closest first. The
// repository pre-filters with a bounding box; the exact haversine distance is
// applied here.
func (s *EventService) FeedNearby(lat, lon, radiusKm float64, limit int) (*entities.FeedList, error) {
	if radiusKm <= 0 || radiusKm > 200 {
		radiusKm = 25
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	minLat, maxLat, minLon, maxLon := utils.BoundingBox(lat, lon, radiusKm)
	candidates, err := s.Repo.ListUpcomingInBox(minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, err
	}

	feed := &entities.FeedList{Lat: lat, Lon: lon, RadiusKm: radiusKm}
	for _, event := range candidates {
		distance := utils.HaversineKm(lat, lon, event.Lat, event.Lon)
		if distance > radiusKm {
			continue
		}
		feed.Events = append(feed.Events, entities.FeedEventResponse{
			EventResponse: event,
			DistanceKm:    distance,
		})
	}
	sort.Slice(feed.Events, func(i, j int) bool {
		return feed.Events[i].DistanceKm < feed.Events[j].DistanceKm
	})
	if len(feed.Events) > limit {
		feed.Events = feed.Events[:limit]
	}
	return feed, nil
}

func (s *EventService) GetParticipants(eventID int) ([]entities.GroupMemberResponse, error) {
	return s.Repo.GetParticipants(eventID)
}

func (s *EventService) CreateEvent(creatorID int, req entities.EventRequest) (*entities.EventResponse, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.ErrInvalidInterval
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title cannot be empty")
	}

	event := &db.Event{
		Code:        strings.ToUpper(uuid.NewString()[:8]),
		Title:       req.Title,
		Description: req.Description,
		Sport:       req.Sport,
		CreatorID:   creatorID,
		Capacity:    req.Capacity,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Address:     req.Address,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      statusActive,
	}
	if req.GroupID != nil {
		event.GroupID = sql.NullInt64{Int64: int64(*req.GroupID), Valid: true}
	}

	if err := s.Repo.CreateEvent(event); err != nil {
		log.Printf("Error creating event in repository: %v", err)
		return nil, err
	}

	s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	s.bus.Publish(bus.Wildcard(bus.EventGetFeed))
	if req.GroupID != nil {
		s.bus.Publish(bus.Scoped(bus.GroupFreeIntervals, *req.GroupID))
	}

	return s.Repo.GetEventByID(event.ID)
}

func (s *EventService) UpdateEvent(eventID, userID int, req entities.EventRequest) (*entities.EventResponse, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.ErrInvalidInterval
	}

	event, err := s.Repo.GetEventRow(eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, apperrors.ErrForbidden
	}
	if event.Status != statusActive {
		return nil, fmt.Errorf("only active events can be updated")
	}

	rescheduled := !event.StartTime.Equal(req.StartTime) || !event.EndTime.Equal(req.EndTime)

	event.Title = req.Title
	event.Description = req.Description
	event.Sport = req.Sport
	event.Capacity = req.Capacity
	event.Lat = req.Lat
	event.Lon = req.Lon
	event.Address = req.Address
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime

	if err := s.Repo.UpdateEvent(event); err != nil {
		return nil, err
	}

	s.bus.Publish(bus.Scoped(bus.EventGetByID, eventID))
	s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	s.bus.Publish(bus.Wildcard(bus.EventGetFeed))
	if event.GroupID.Valid {
		s.bus.Publish(bus.Scoped(bus.GroupFreeIntervals, int(event.GroupID.Int64)))
	}

	if rescheduled {
		s.notifyParticipants(event, "rescheduled")
	}
	return s.Repo.GetEventByID(eventID)
}

// CancelEvent marks the event canceled and notifies every participant.
func (s *EventService) CancelEvent(eventID, userID int) error {
	event, err := s.Repo.GetEventRow(eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != userID {
		return apperrors.ErrForbidden
	}
	if event.Status != statusActive {
		return fmt.Errorf("only active events can be canceled")
	}

	if err := s.Repo.SetEventStatus(eventID, statusCanceled); err != nil {
		return err
	}

	s.bus.Publish(bus.Scoped(bus.EventGetByID, eventID))
	s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	s.bus.Publish(bus.Wildcard(bus.EventGetFeed))
	if event.GroupID.Valid {
		s.bus.Publish(bus.Scoped(bus.GroupFreeIntervals, int(event.GroupID.Int64)))
	}

	s.notifyParticipants(event, statusCanceled)
	return nil
}

func (s *EventService) JoinEvent(eventID, userID int) error {
	if err := s.Repo.JoinEvent(eventID, userID); err != nil {
		return err
	}

	s.publishParticipationChange(eventID)
	return nil
}

func (s *EventService) LeaveEvent(eventID, userID int) error {
	if err := s.Repo.LeaveEvent(eventID, userID); err != nil {
		return err
	}

	s.publishParticipationChange(eventID)
	return nil
}

// publishParticipationChange invalidates every read that renders the
// participant count: the detail view, the participant list, and the list and
// feed rows that embed the count.
func (s *EventService) publishParticipationChange(eventID int) {
	s.bus.Publish(bus.Scoped(bus.EventGetByID, eventID))
	s.bus.Publish(bus.Scoped(bus.EventGetParticipants, eventID))
	s.bus.Publish(bus.Wildcard(bus.EventGetPaginated))
	s.bus.Publish(bus.Wildcard(bus.EventGetFeed))
	s.publishGroupAvailability(eventID)
}

func (s *EventService) publishGroupAvailability(eventID int) {
	event, err := s.Repo.GetEventRow(eventID)
	if err != nil {
		log.Printf("Could not load event %d for availability invalidation: %v", eventID, err)
		return
	}
	if event.GroupID.Valid {
		s.bus.Publish(bus.Scoped(bus.GroupFreeIntervals, int(event.GroupID.Int64)))
	}
}

func (s *EventService) notifyParticipants(event *db.Event, status string) {
	if s.sender == nil {
		return
	}
	contacts, err := s.Repo.GetParticipantContacts(event.ID)
	if err != nil {
		log.Printf("Could not load participants of event %d for notification: %v", event.ID, err)
		return
	}
	for _, contact := range contacts {
		s.sender.SendEventEmail(contact, event, status)
		s.sender.SendEventSMS(contact, event, status)
	}
}
