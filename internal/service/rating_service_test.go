package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/entities"
)

type fakeRatingRepo struct {
	stars    map[int]map[int]int
	failNext error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{stars: make(map[int]map[int]int)}
}

func (f *fakeRatingRepo) UpsertRating(eventID, userID, stars int) error {
	if f.failNext != nil {
		return f.failNext
	}
	if f.stars[eventID] == nil {
		f.stars[eventID] = make(map[int]int)
	}
	f.stars[eventID][userID] = stars
	return nil
}

func (f *fakeRatingRepo) GetSummary(eventID int, userID *int) (*entities.RatingSummary, error) {
	summary := &entities.RatingSummary{EventID: eventID}
	var total int
	for _, s := range f.stars[eventID] {
		total += s
		summary.Votes++
	}
	if summary.Votes > 0 {
		summary.AvgStars = float64(total) / float64(summary.Votes)
	}
	if userID != nil {
		if s, ok := f.stars[eventID][*userID]; ok {
			stars := s
			summary.UserStars = &stars
		}
	}
	return summary, nil
}

func TestRateEvent_PublishesStaleReads(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	svc := NewRatingService(newFakeRatingRepo(), eventBus)

	var hitRating, hitDetail, hitList, hitFeed atomic.Int64
	scoped := int64(42)
	eventBus.Subscribe(bus.RatingGetForEvent, &scoped, func() { hitRating.Add(1) })
	eventBus.Subscribe(bus.EventGetByID, &scoped, func() { hitDetail.Add(1) })
	eventBus.Subscribe(bus.EventGetPaginated, nil, func() { hitList.Add(1) })
	eventBus.Subscribe(bus.EventGetFeed, nil, func() { hitFeed.Add(1) })

	summary, err := svc.RateEvent(42, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Votes)
	require.NotNil(t, summary.UserStars)
	assert.Equal(t, 5, *summary.UserStars)

	waitForValue(t, &hitRating, 1)
	waitForValue(t, &hitDetail, 1)
	waitForValue(t, &hitList, 1)
	waitForValue(t, &hitFeed, 1)
}

func TestRateEvent_InvalidStars(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	svc := NewRatingService(newFakeRatingRepo(), eventBus)

	_, err := svc.RateEvent(42, 1, 0)
	assert.Error(t, err)
	_, err = svc.RateEvent(42, 1, 6)
	assert.Error(t, err)
}

func TestRateEvent_FailedUpsertDoesNotPublish(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeRatingRepo()
	repo.failNext = assert.AnError
	svc := NewRatingService(repo, eventBus)

	var hits atomic.Int64
	eventBus.Subscribe(bus.RatingGetForEvent, nil, func() { hits.Add(1) })

	_, err := svc.RateEvent(42, 1, 4)
	require.Error(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), hits.Load())
}
