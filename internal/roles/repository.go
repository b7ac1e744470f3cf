package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/platform/db"
	"github.com/carhive/carhive/internal/platform/httpx"
)

// PGRepository is the PostgreSQL-backed role administration repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	out := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("roles: list: %w", err)
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		perms, err := r.rolePermissions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Permissions = perms
	}
	return out, nil
}

func (r *PGRepository) RoleByID(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, '') FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("roles: get: %w", err)
	}
	perms, err := r.rolePermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

func (r *PGRepository) rolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, COALESCE(p.description, '') FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1
		 ORDER BY p.id`, roleID)
	if err != nil {
		return nil, fmt.Errorf("roles: permissions: %w", err)
	}
	defer rows.Close()

	out := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("roles: permissions: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepository) CreateRole(ctx context.Context, role *Role) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING id`,
		role.Name, role.Description,
	).Scan(&role.ID)
	if httpx.IsUniqueViolation(err) {
		return fmt.Errorf("%w: role name already in use", httpx.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("roles: create: %w", err)
	}
	return nil
}

func (r *PGRepository) UpdateRole(ctx context.Context, role *Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $1, description = $2 WHERE id = $3`,
		role.Name, role.Description, role.ID)
	if httpx.IsUniqueViolation(err) {
		return fmt.Errorf("%w: role name already in use", httpx.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("roles: update: %w", err)
	}
	return nil
}

func (r *PGRepository) DeleteRole(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("roles: delete: %w", err)
	}
	return nil
}

// SetPermissions replaces the role's permission set in one transaction so a
// concurrent resolver never observes a half-applied mapping.
func (r *PGRepository) SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return fmt.Errorf("roles: clear permissions: %w", err)
		}
		for _, pid := range permissionIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
				roleID, pid)
			if httpx.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: permission %d", httpx.ErrNotFound, pid)
			}
			if err != nil {
				return fmt.Errorf("roles: set permission: %w", err)
			}
		}
		return nil
	})
}

func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM permissions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("roles: list permissions: %w", err)
	}
	defer rows.Close()

	out := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("roles: list permissions: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepository) AssignUserRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
		userID, roleID)
	switch {
	case err == nil:
		return nil
	case httpx.IsUniqueViolation(err):
		return fmt.Errorf("%w: role already assigned", httpx.ErrDuplicate)
	case httpx.IsForeignKeyViolation(err):
		return httpx.ErrNotFound
	default:
		return fmt.Errorf("roles: assign: %w", err)
	}
}

func (r *PGRepository) RemoveUserRole(ctx context.Context, userID, roleID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`,
		userID, roleID)
	if err != nil {
		return fmt.Errorf("roles: remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
