package service

import (
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"fitnesstime/internal/db"
	"fitnesstime/internal/entities"
	"fitnesstime/internal/repository"
)

type AuthService interface {
	Register(req entities.RegisterRequest) (*entities.LoginResponse, error)
	Login(email, password string) (*entities.LoginResponse, error)
}

type authService struct {
	repo repository.UserRepository
}

func NewAuthService(repo repository.UserRepository) AuthService {
	return &authService{repo: repo}
}

func (s *authService) Register(req entities.RegisterRequest) (*entities.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password cannot be empty")
	}

	existing, err := s.repo.GetByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Language:     req.Language,
		City:         req.City,
	}
	if req.Lat != nil {
		user.Lat = sql.NullFloat64{Float64: *req.Lat, Valid: true}
	}
	if req.Lon != nil {
		user.Lon = sql.NullFloat64{Float64: *req.Lon, Valid: true}
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}
	return s.tokenResponse(user)
}

func (s *authService) Login(email, password string) (*entities.LoginResponse, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return s.tokenResponse(user)
}

func (s *authService) tokenResponse(user *db.User) (*entities.LoginResponse, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &entities.LoginResponse{Token: signed, User: UserToResponse(user)}, nil
}

// UserToResponse strips credentials off a user row.
func UserToResponse(user *db.User) entities.UserResponse {
	resp := entities.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Language:  user.Language,
		City:      user.City,
		CreatedAt: user.CreatedAt,
	}
	if user.Lat.Valid {
		lat := user.Lat.Float64
		resp.Lat = &lat
	}
	if user.Lon.Valid {
		lon := user.Lon.Float64
		resp.Lon = &lon
	}
	return resp
}
