package service

import (
	"fmt"
	"strings"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
	"fitnesstime/internal/repository"
)

type CommentService struct {
	repo repository.CommentRepository
	bus  *bus.Bus
}

func NewCommentService(repo repository.CommentRepository, eventBus *bus.Bus) *CommentService {
	return &CommentService{repo: repo, bus: eventBus}
}

func (s *CommentService) ListForEvent(eventID int) ([]entities.CommentResponse, error) {
	return s.repo.ListForEvent(eventID)
}

func (s *CommentService) CreateComment(eventID, userID int, req entities.CommentRequest) (*db.Comment, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("comment body cannot be empty")
	}

	comment := &db.Comment{EventID: eventID, UserID: userID, Body: req.Body}
	if err := s.repo.CreateComment(comment); err != nil {
		return nil, err
	}

	s.bus.Publish(bus.Scoped(bus.CommentGetForEvent, eventID))
	return comment, nil
}

// DeleteComment removes a comment; only its author may delete it.
func (s *CommentService) DeleteComment(commentID, userID int) error {
	comment, err := s.repo.GetCommentByID(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.repo.DeleteComment(commentID); err != nil {
		return err
	}

	s.bus.Publish(bus.Scoped(bus.CommentGetForEvent, comment.EventID))
	return nil
}
