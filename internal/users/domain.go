// Package users implements the user administration surface and the
// self-service profile endpoint. Route-level middleware gates the admin
// operations behind the user management permission.
package users

import "time"

// User is the administrative view of an account. The password hash never
// leaves the repository layer.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	Roles     []string  `json:"roles"`
}
