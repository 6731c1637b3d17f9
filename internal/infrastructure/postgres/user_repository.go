package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements UserRepository over PostgreSQL (pool or tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository builds the adapter. Pass pool or tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persists a new user. A username collision yields ErrUsernameTaken.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, full_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FullName, user.Role, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns a user, or nil when absent.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	return r.getOne(`WHERE id = $1`, id)
}

// GetByUsername returns a user by exact username, or nil when absent.
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	return r.getOne(`WHERE username = $1`, username)
}

func (r *UserRepo) getOne(where string, arg any) (*entity.User, error) {
	query := `SELECT id, username, email, password_hash, full_name, role, created_at FROM users ` + where
	var u entity.User
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
