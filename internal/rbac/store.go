package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/platform/httpx"
)

// Store loads principals with their role→permission graph from PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// LoadPrincipal fetches the user and its full role graph. The graph is loaded
// fresh on every call so permission changes take effect on the next request.
func (s *Store) LoadPrincipal(ctx context.Context, userID int64) (Principal, error) {
	var p Principal
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, is_active, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.Username, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, httpx.ErrNotFound
		}
		return Principal{}, fmt.Errorf("rbac: load user: %w", err)
	}

	roles, err := s.loadRoles(ctx, userID)
	if err != nil {
		return Principal{}, err
	}
	p.Roles = roles
	return p, nil
}

func (s *Store) loadRoles(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.name, COALESCE(r.description, '')
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("rbac: load roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	var roleIDs []int64
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("rbac: scan role: %w", err)
		}
		roles = append(roles, role)
		roleIDs = append(roleIDs, role.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: roles rows: %w", err)
	}
	if len(roles) == 0 {
		return nil, nil
	}

	permRows, err := s.pool.Query(ctx,
		`SELECT rp.role_id, p.id, p.name, COALESCE(p.description, '')
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ANY($1)
		 ORDER BY p.name`,
		roleIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("rbac: load permissions: %w", err)
	}
	defer permRows.Close()

	byRole := make(map[int64][]Permission, len(roles))
	for permRows.Next() {
		var roleID int64
		var perm Permission
		if err := permRows.Scan(&roleID, &perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, fmt.Errorf("rbac: scan permission: %w", err)
		}
		byRole[roleID] = append(byRole[roleID], perm)
	}
	if err := permRows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: permission rows: %w", err)
	}

	for i := range roles {
		roles[i].Permissions = byRole[roles[i].ID]
	}
	return roles, nil
}

// ListPermissions returns all known permissions ordered by name.
func (s *Store) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list permissions: %w", err)
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, fmt.Errorf("rbac: scan permission: %w", err)
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}
