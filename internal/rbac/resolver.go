package rbac

import (
	"github.com/carhive/carhive/internal/platform/httpx"
)

// PermissionSet is a principal's effective permission names.
type PermissionSet map[string]struct{}

// Has reports whether the set contains the named permission.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Resolve computes the effective permission set as the union across the
// principal's assigned roles. A principal with no roles at all is a
// provisioning fault, surfaced as ErrRoleNotAssigned rather than a plain
// forbidden. Pure function of the loaded role graph; nothing is cached
// across requests.
func Resolve(p Principal) (PermissionSet, error) {
	if len(p.Roles) == 0 {
		return nil, httpx.ErrRoleNotAssigned
	}
	set := make(PermissionSet)
	for _, role := range p.Roles {
		for _, perm := range role.Permissions {
			set[perm.Name] = struct{}{}
		}
	}
	return set, nil
}
