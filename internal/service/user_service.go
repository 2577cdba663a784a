package service

import (
	"database/sql"

	"fitnesstime/internal/bus"
	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
	"fitnesstime/internal/repository"
)

type UserService struct {
	repo repository.UserRepository
	bus  *bus.Bus
}

func NewUserService(repo repository.UserRepository, eventBus *bus.Bus) *UserService {
	return &UserService{repo: repo, bus: eventBus}
}

func (s *UserService) GetProfile(userID int) (*entities.UserResponse, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}
	resp := UserToResponse(user)
	return &resp, nil
}

func (s *UserService) UpdateProfile(userID int, req entities.UpdateProfileRequest) (*entities.UserResponse, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}

	user.Name = req.Name
	user.Phone = req.Phone
	user.Language = req.Language
	user.City = req.City
	user.Lat = sql.NullFloat64{}
	user.Lon = sql.NullFloat64{}
	if req.Lat != nil {
		user.Lat = sql.NullFloat64{Float64: *req.Lat, Valid: true}
	}
	if req.Lon != nil {
		user.Lon = sql.NullFloat64{Float64: *req.Lon, Valid: true}
	}

	if err := s.repo.UpdateProfile(user); err != nil {
		return nil, err
	}
	s.bus.Publish(bus.Scoped(bus.UserGetByID, user.ID))

	resp := UserToResponse(user)
	return &resp, nil
}
