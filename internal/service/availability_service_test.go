package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

type fakeBusySource struct {
	groups map[int]bool
	busy   []entities.Interval
	err    error
}

func (f *fakeBusySource) GetGroupBusyIntervals(groupID int, from, until time.Time) ([]entities.Interval, error) {
	return f.busy, f.err
}

func (f *fakeBusySource) GetGroupByID(id int) (*entities.GroupResponse, error) {
	if !f.groups[id] {
		return nil, apperrors.ErrNotFound
	}
	return &entities.GroupResponse{ID: id}, nil
}

func TestGroupFreeIntervals(t *testing.T) {
	repo := &fakeBusySource{
		groups: map[int]bool{7: true},
		busy:   []entities.Interval{iv(10, 0, 11, 0), iv(11, 10, 12, 0)},
	}
	svc := NewAvailabilityService(repo)

	resp, err := svc.GroupFreeIntervals(7, at(9, 0), at(13, 0), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.GroupID)
	assert.Equal(t, 30, resp.MinGapMinutes)
	assert.Equal(t, []entities.Interval{iv(9, 0, 10, 0), iv(12, 0, 13, 0)}, resp.FreeIntervals)
}

func TestGroupFreeIntervals_UnknownGroup(t *testing.T) {
	svc := NewAvailabilityService(&fakeBusySource{groups: map[int]bool{}})
	_, err := svc.GroupFreeIntervals(99, at(9, 0), at(13, 0), 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGroupFreeIntervals_InvalidWindow(t *testing.T) {
	svc := NewAvailabilityService(&fakeBusySource{groups: map[int]bool{7: true}})
	_, err := svc.GroupFreeIntervals(7, at(13, 0), at(9, 0), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidWindow)
}

func TestGroupFreeIntervals_CustomMinGap(t *testing.T) {
	repo := &fakeBusySource{
		groups: map[int]bool{7: true},
		busy:   []entities.Interval{iv(10, 0, 11, 0), iv(11, 10, 12, 0)},
	}
	svc := NewAvailabilityService(repo)

	resp, err := svc.GroupFreeIntervals(7, at(9, 0), at(13, 0), 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.MinGapMinutes)
	assert.Equal(t, []entities.Interval{iv(9, 0, 10, 0), iv(11, 0, 11, 10), iv(12, 0, 13, 0)}, resp.FreeIntervals)
}
