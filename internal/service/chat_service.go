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

type ChatService struct {
	Repo      *repository.ChatRepository
	GroupRepo *repository.GroupRepository
	bus       *bus.Bus
}

func NewChatService(repo *repository.ChatRepository, groupRepo *repository.GroupRepository, eventBus *bus.Bus) *ChatService {
	return &ChatService{Repo: repo, GroupRepo: groupRepo, bus: eventBus}
}

func (s *ChatService) ListForGroup(groupID, userID, limit, offset int) ([]entities.ChatMessageResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if err := s.requireMember(groupID, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListForGroup(groupID, limit, offset)
}

func (s *ChatService) SendMessage(groupID, userID int, req entities.ChatMessageRequest) (*db.ChatMessage, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("message body cannot be empty")
	}
	if err := s.requireMember(groupID, userID); err != nil {
		return nil, err
	}

	msg := &db.ChatMessage{GroupID: groupID, UserID: userID, Body: req.Body}
	if err := s.Repo.CreateMessage(msg); err != nil {
		return nil, err
	}

	s.bus.Publish(bus.Scoped(bus.ChatGetForGroup, groupID))
	return msg, nil
}

func (s *ChatService) requireMember(groupID, userID int) error {
	member, err := s.GroupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.ErrNotMember
	}
	return nil
}
