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

type GroupService struct {
	Repo *repository.GroupRepository
	bus  *bus.Bus
}

func NewGroupService(repo *repository.GroupRepository, eventBus *bus.Bus) *GroupService {
	return &GroupService{Repo: repo, bus: eventBus}
}

func (s *GroupService) GetGroupByID(id int) (*entities.GroupResponse, error) {
	return s.Repo.GetGroupByID(id)
}

func (s *GroupService) ListGroups(sport, city string, limit, offset int) (*entities.GroupsList, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListGroups(sport, city, limit, offset)
}

func (s *GroupService) GetMembers(groupID int) ([]entities.GroupMemberResponse, error) {
	if _, err := s.Repo.GetGroupByID(groupID); err != nil {
		return nil, err
	}
	return s.Repo.GetMembers(groupID)
}

func (s *GroupService) CreateGroup(creatorID int, req entities.GroupRequest) (*entities.GroupResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	group := &db.Group{
		Name:        req.Name,
		Description: req.Description,
		Sport:       req.Sport,
		City:        req.City,
		CreatorID:   creatorID,
	}
	if err := s.Repo.CreateGroup(group); err != nil {
		return nil, err
	}

	// The creator is a member from the start.
	if err := s.Repo.JoinGroup(group.ID, creatorID, "owner"); err != nil {
		return nil, err
	}

	s.bus.Publish(bus.Wildcard(bus.GroupGetPaginated))
	return s.Repo.GetGroupByID(group.ID)
}

func (s *GroupService) UpdateGroup(groupID, userID int, req entities.GroupRequest) (*entities.GroupResponse, error) {
	creatorID, err := s.Repo.GetCreatorID(groupID)
	if err != nil {
		return nil, err
	}
	if creatorID != userID {
		return nil, apperrors.ErrForbidden
	}

	group := &db.Group{
		ID:          groupID,
		Name:        req.Name,
		Description: req.Description,
		Sport:       req.Sport,
		City:        req.City,
	}
	if err := s.Repo.UpdateGroup(group); err != nil {
		return nil, err
	}

	s.bus.Publish(bus.Scoped(bus.GroupGetByID, groupID))
	s.bus.Publish(bus.Wildcard(bus.GroupGetPaginated))
	return s.Repo.GetGroupByID(groupID)
}

func (s *GroupService) JoinGroup(groupID, userID int) error {
	if err := s.Repo.JoinGroup(groupID, userID, "member"); err != nil {
		return err
	}

	s.bus.Publish(bus.Scoped(bus.GroupGetByID, groupID))
	s.bus.Publish(bus.Scoped(bus.GroupGetMembers, groupID))
	s.bus.Publish(bus.Scoped(bus.GroupFreeIntervals, groupID))
	return nil
}

func (s *GroupService) LeaveGroup(groupID, userID int) error {
	if err := s.Repo.LeaveGroup(groupID, userID); err != nil {
		return err
	}

	s.bus.Publish(bus.Scoped(bus.GroupGetByID, groupID))
	s.bus.Publish(bus.Scoped(bus.GroupGetMembers, groupID))
	s.bus.Publish(bus.Scoped(bus.GroupFreeIntervals, groupID))
	return nil
}
