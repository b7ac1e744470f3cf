// Package roles implements role and permission administration: role CRUD,
// the role-to-permission mapping and user role assignment.
package roles

// Permission is an assignable capability.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Role is a named permission bundle assignable to users.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}
