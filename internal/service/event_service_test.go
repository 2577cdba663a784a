package service

import (
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

type fakeEventRepo struct {
	events map[int]*db.Event
	joined map[int]map[int]bool
	nextID int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events: make(map[int]*db.Event),
		joined: make(map[int]map[int]bool),
		nextID: 1,
	}
}

func (f *fakeEventRepo) CreateEvent(event *db.Event) error {
	event.ID = f.nextID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	f.events[event.ID] = event
	f.nextID++
	return nil
}

func (f *fakeEventRepo) GetEventRow(id int) (*db.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) GetEventByID(id int) (*entities.EventResponse, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &entities.EventResponse{
		ID: event.ID, Code: event.Code, Title: event.Title, Status: event.Status,
		StartTime: event.StartTime, EndTime: event.EndTime,
		Participants: len(f.joined[id]),
	}, nil
}

func (f *fakeEventRepo) ListEvents(filter entities.EventFilter) (*entities.EventsList, error) {
	return &entities.EventsList{Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeEventRepo) ListUpcomingInBox(minLat, maxLat, minLon, maxLon float64) ([]entities.EventResponse, error) {
	return nil, nil
}

func (f *fakeEventRepo) UpdateEvent(event *db.Event) error {
	stored, ok := f.events[event.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	*stored = *event
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeEventRepo) SetEventStatus(id int, status string) error {
	event, ok := f.events[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	event.Status = status
	return nil
}

func (f *fakeEventRepo) JoinEvent(eventID, userID int) error {
	event, ok := f.events[eventID]
	if !ok || event.Status != statusActive {
		return apperrors.ErrNotFound
	}
	if f.joined[eventID] == nil {
		f.joined[eventID] = make(map[int]bool)
	}
	if f.joined[eventID][userID] {
		return apperrors.ErrAlreadyJoined
	}
	if event.Capacity > 0 && len(f.joined[eventID]) >= event.Capacity {
		return apperrors.ErrEventFull
	}
	f.joined[eventID][userID] = true
	return nil
}

func (f *fakeEventRepo) LeaveEvent(eventID, userID int) error {
	if !f.joined[eventID][userID] {
		return apperrors.ErrNotMember
	}
	delete(f.joined[eventID], userID)
	return nil
}

func (f *fakeEventRepo) GetParticipants(eventID int) ([]entities.GroupMemberResponse, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetParticipantContacts(eventID int) ([]db.User, error) {
	return nil, nil
}

func seedEvent(repo *fakeEventRepo, creatorID int, groupID *int) *db.Event {
	event := &db.Event{
		Code:      "ABCD1234",
		Title:     "Morning run",
		Sport:     "running",
		CreatorID: creatorID,
		Capacity:  10,
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Status:    statusActive,
	}
	if groupID != nil {
		event.GroupID = sql.NullInt64{Int64: int64(*groupID), Valid: true}
	}
	repo.CreateEvent(event)
	return event
}

func TestUpdateEvent_PublishesScopedGetByID(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, eventBus)
	event := seedEvent(repo, 1, nil)

	var hitEvent, hitOther, hitFeed atomic.Int64
	scoped, other := int64(event.ID), int64(event.ID+1)
	eventBus.Subscribe(bus.EventGetByID, &scoped, func() { hitEvent.Add(1) })
	eventBus.Subscribe(bus.EventGetByID, &other, func() { hitOther.Add(1) })
	eventBus.Subscribe(bus.EventGetFeed, nil, func() { hitFeed.Add(1) })

	_, err := svc.UpdateEvent(event.ID, 1, entities.EventRequest{
		Title: "Morning run", Sport: "running", Capacity: 10,
		Lat: 45.0, Lon: 9.0, Address: "new park entrance",
		StartTime: event.StartTime, EndTime: event.EndTime,
	})
	require.NoError(t, err)

	waitForValue(t, &hitEvent, 1)
	// Moving the event stales the feed read too.
	waitForValue(t, &hitFeed, 1)
	assert.Equal(t, int64(0), hitOther.Load())
}

func TestUpdateEvent_FailedMutationDoesNotPublish(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, eventBus)
	event := seedEvent(repo, 1, nil)

	var hits atomic.Int64
	eventBus.Subscribe(bus.EventGetByID, nil, func() { hits.Add(1) })

	// Not the creator.
	_, err := svc.UpdateEvent(event.ID, 2, entities.EventRequest{
		Title: "x", StartTime: event.StartTime, EndTime: event.EndTime,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), hits.Load())
}

func TestJoinEvent_PublishesParticipationReads(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, eventBus)
	event := seedEvent(repo, 1, nil)

	var hitList, hitFeed, hitParticipants atomic.Int64
	scoped := int64(event.ID)
	eventBus.Subscribe(bus.EventGetPaginated, nil, func() { hitList.Add(1) })
	eventBus.Subscribe(bus.EventGetFeed, nil, func() { hitFeed.Add(1) })
	eventBus.Subscribe(bus.EventGetParticipants, &scoped, func() { hitParticipants.Add(1) })

	require.NoError(t, svc.JoinEvent(event.ID, 2))

	waitForValue(t, &hitList, 1)
	waitForValue(t, &hitFeed, 1)
	waitForValue(t, &hitParticipants, 1)

	require.NoError(t, svc.LeaveEvent(event.ID, 2))
	waitForValue(t, &hitList, 2)
}

func TestCreateEvent_GroupedPublishesAvailability(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, eventBus)

	var hitAvailability atomic.Int64
	groupID := 7
	scoped := int64(groupID)
	eventBus.Subscribe(bus.GroupFreeIntervals, &scoped, func() { hitAvailability.Add(1) })

	_, err := svc.CreateEvent(1, entities.EventRequest{
		Title: "Evening ride", Sport: "cycling", GroupID: &groupID, Capacity: 5,
		StartTime: at(18, 0), EndTime: at(19, 0),
	})
	require.NoError(t, err)

	waitForValue(t, &hitAvailability, 1)
}
