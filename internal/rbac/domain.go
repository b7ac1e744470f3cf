// Package rbac resolves role-based permissions and decides ownership-scoped
// authorization for mutating operations.
package rbac

import "time"

// Permission names consumed by the catalog and garage services. The core
// treats them as opaque strings; the name-to-meaning mapping is seeded policy.
const (
	PermUsersCrud     = "users:crud"
	PermCarsRead      = "cars:read"
	PermCarsWrite     = "cars:write"
	PermCarsUpdateOwn = "cars:update_own"
	PermCarsDelete    = "cars:delete"
	PermCarsDeleteOwn = "cars:delete_own"
	PermMyCars        = "my_cars"
)

// Permission represents an atomic capability. "Own" variants are separate
// permissions from their "any" counterparts, not a modifier.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Role is a named bundle of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []Permission
}

// Principal describes the authenticated actor with its loaded role graph.
type Principal struct {
	ID        int64
	Username  string
	IsActive  bool
	CreatedAt time.Time
	Roles     []Role
}
