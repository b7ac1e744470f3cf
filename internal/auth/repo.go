package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/platform/httpx"
)

// PGRepository is the PostgreSQL-backed account repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches an account by its unique username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, hashed_password, is_active FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &user, nil
}

// Create inserts a new active account.
func (r *PGRepository) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, hashed_password, is_active)
		 VALUES ($1, $2, TRUE)
		 RETURNING id, username, hashed_password, is_active`,
		username, passwordHash,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsActive)
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	return &user, nil
}
