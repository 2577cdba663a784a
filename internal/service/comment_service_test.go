package service

import (
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

type fakeCommentRepo struct {
	comments map[int]*db.Comment
	nextID   int
	failNext error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int]*db.Comment), nextID: 1}
}

func (f *fakeCommentRepo) CreateComment(comment *db.Comment) error {
	if f.failNext != nil {
		return f.failNext
	}
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	f.comments[comment.ID] = comment
	f.nextID++
	return nil
}

func (f *fakeCommentRepo) ListForEvent(eventID int) ([]entities.CommentResponse, error) {
	var out []entities.CommentResponse
	for _, c := range f.comments {
		if c.EventID == eventID {
			out = append(out, entities.CommentResponse{ID: c.ID, EventID: c.EventID, UserID: c.UserID, Body: c.Body})
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) GetCommentByID(id int) (*db.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (f *fakeCommentRepo) DeleteComment(id int) error {
	if _, ok := f.comments[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func waitForValue(t *testing.T, counter *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, want, counter.Load())
}

func TestCreateComment_PublishesScopedInvalidation(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	svc := NewCommentService(newFakeCommentRepo(), eventBus)

	var hits42, hits7 atomic.Int64
	scope42, scope7 := int64(42), int64(7)
	eventBus.Subscribe(bus.CommentGetForEvent, &scope42, func() { hits42.Add(1) })
	eventBus.Subscribe(bus.CommentGetForEvent, &scope7, func() { hits7.Add(1) })

	comment, err := svc.CreateComment(42, 1, entities.CommentRequest{Body: "see you there"})
	require.NoError(t, err)
	assert.Equal(t, 42, comment.EventID)

	waitForValue(t, &hits42, 1)
	assert.Equal(t, int64(0), hits7.Load())
}

func TestCreateComment_FailedMutationDoesNotPublish(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeCommentRepo()
	repo.failNext = assert.AnError
	svc := NewCommentService(repo, eventBus)

	var hits atomic.Int64
	eventBus.Subscribe(bus.CommentGetForEvent, nil, func() { hits.Add(1) })

	_, err := svc.CreateComment(42, 1, entities.CommentRequest{Body: "hi"})
	require.Error(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), hits.Load())
}

func TestCreateComment_EmptyBody(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	svc := NewCommentService(newFakeCommentRepo(), eventBus)

	_, err := svc.CreateComment(42, 1, entities.CommentRequest{Body: "   "})
	assert.Error(t, err)
}

func TestDeleteComment_OnlyAuthor(t *testing.T) {
	eventBus := bus.NewBus()
	defer eventBus.Close()
	repo := newFakeCommentRepo()
	svc := NewCommentService(repo, eventBus)

	comment, err := svc.CreateComment(42, 1, entities.CommentRequest{Body: "hello"})
	require.NoError(t, err)

	err = svc.DeleteComment(comment.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = svc.DeleteComment(comment.ID, 1)
	assert.NoError(t, err)

	err = svc.DeleteComment(comment.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
