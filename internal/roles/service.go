package roles

import (
	"context"
	"log/slog"

	"github.com/carhive/carhive/internal/audit"
)

// Repository provides persistence for role administration.
type Repository interface {
	ListRoles(ctx context.Context) ([]Role, error)
	RoleByID(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id int64) error
	SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	AssignUserRole(ctx context.Context, userID, roleID int64) error
	RemoveUserRole(ctx context.Context, userID, roleID int64) error
}

// Service handles role administration. Permission gating happens in the
// route middleware, not here.
type Service struct {
	repo    Repository
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, auditor audit.Recorder, logger *slog.Logger) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// RoleInput carries the writable role fields.
type RoleInput struct {
	Name        string
	Description string
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return s.repo.RoleByID(ctx, id)
}

func (s *Service) CreateRole(ctx context.Context, actorID int64, input RoleInput) (*Role, error) {
	role := &Role{Name: input.Name, Description: input.Description, Permissions: []Permission{}}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Record{ActorID: actorID, Action: "create", Entity: "role", EntityID: role.ID})
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, actorID, id int64, input RoleInput) (*Role, error) {
	role, err := s.repo.RoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Name = input.Name
	role.Description = input.Description
	if err := s.repo.UpdateRole(ctx, role); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Record{ActorID: actorID, Action: "update", Entity: "role", EntityID: id})
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, actorID, id int64) error {
	if _, err := s.repo.RoleByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Record{ActorID: actorID, Action: "delete", Entity: "role", EntityID: id})
	return nil
}

// SetPermissions replaces the role's permission set atomically.
func (s *Service) SetPermissions(ctx context.Context, actorID, roleID int64, permissionIDs []int64) (*Role, error) {
	if _, err := s.repo.RoleByID(ctx, roleID); err != nil {
		return nil, err
	}
	if err := s.repo.SetPermissions(ctx, roleID, permissionIDs); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Record{
		ActorID:  actorID,
		Action:   "set_permissions",
		Entity:   "role",
		EntityID: roleID,
		Meta:     map[string]any{"permission_ids": permissionIDs},
	})
	return s.repo.RoleByID(ctx, roleID)
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *Service) AssignUserRole(ctx context.Context, actorID, userID, roleID int64) error {
	if err := s.repo.AssignUserRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Record{
		ActorID:  actorID,
		Action:   "assign_role",
		Entity:   "user",
		EntityID: userID,
		Meta:     map[string]any{"role_id": roleID},
	})
	return nil
}

func (s *Service) RemoveUserRole(ctx context.Context, actorID, userID, roleID int64) error {
	if err := s.repo.RemoveUserRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Record{
		ActorID:  actorID,
		Action:   "remove_role",
		Entity:   "user",
		EntityID: userID,
		Meta:     map[string]any{"role_id": roleID},
	})
	return nil
}
