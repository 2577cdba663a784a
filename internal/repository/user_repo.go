package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"fitnesstime/internal/db"
)

type UserRepository interface {
	CreateUser(user *db.User) error
	GetByEmail(email string) (*db.User, error)
	GetByID(id int) (*db.User, error)
	UpdateProfile(user *db.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(database *sql.DB) UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) CreateUser(user *db.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, phone, language, city, lat, lon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(query,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.Language, user.City, user.Lat, user.Lon,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByEmail(email string) (*db.User, error) {
	var user db.User
	query := `
		SELECT id, name, email, password_hash, phone, language, city, lat, lon, created_at, updated_at
		FROM users WHERE email = $1`
	err := r.db.QueryRow(query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone, &user.Language,
		&user.City, &user.Lat, &user.Lon, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(id int) (*db.User, error) {
	var user db.User
	query := `
		SELECT id, name, email, password_hash, phone, language, city, lat, lon, created_at, updated_at
		FROM users WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone, &user.Language,
		&user.City, &user.Lat, &user.Lon, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(user *db.User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, language = $3, city = $4, lat = $5, lon = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`
	err := r.db.QueryRow(query,
		user.Name, user.Phone, user.Language, user.City, user.Lat, user.Lon, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating user %d: %w", user.ID, err)
	}
	return nil
}
