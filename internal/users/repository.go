package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
)

var userFields = query.FieldSet{
	"id":        {Column: "u.id", Kind: query.KindInt},
	"username":  {Column: "u.username", Kind: query.KindString},
	"is_active": {Column: "u.is_active", Kind: query.KindBool},
}

// PGRepository is the PostgreSQL-backed user administration repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, p query.Params) (query.Page[User], error) {
	base := query.Base{
		SelectSQL: `SELECT u.id, u.username, u.is_active, u.created_at FROM users u`,
		CountSQL:  `SELECT COUNT(*) FROM users u`,
	}
	page, err := query.Run(ctx, r.pool, base, userFields, p, func(rows pgx.Rows) (User, error) {
		var u User
		err := rows.Scan(&u.ID, &u.Username, &u.IsActive, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return query.Page[User]{}, err
	}
	for i := range page.Data {
		roles, err := r.roleNames(ctx, page.Data[i].ID)
		if err != nil {
			return query.Page[User]{}, err
		}
		page.Data[i].Roles = roles
	}
	return page, nil
}

func (r *PGRepository) ByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, is_active, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	roles, err := r.roleNames(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *PGRepository) roleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("users: roles: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("users: roles: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Apply writes a partial update as one statement. NULL arguments fall back to
// the stored value via COALESCE, so the touched fields change together or not
// at all.
func (r *PGRepository) Apply(ctx context.Context, id int64, change Change) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET
			username        = COALESCE($1, username),
			hashed_password = COALESCE($2, hashed_password),
			is_active       = COALESCE($3, is_active)
		 WHERE id = $4`,
		change.Username, change.PasswordHash, change.IsActive, id)
	if httpx.IsUniqueViolation(err) {
		return fmt.Errorf("%w: username already in use", httpx.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("users: apply update: %w", err)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	return nil
}
