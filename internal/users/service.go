package users

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
)

// Repository provides persistence for user administration.
type Repository interface {
	List(ctx context.Context, p query.Params) (query.Page[User], error)
	ByID(ctx context.Context, id int64) (*User, error)
	Apply(ctx context.Context, id int64, change Change) error
	Delete(ctx context.Context, id int64) error
}

// Service handles user administration.
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

// Patch carries a partial user update; nil fields are left unchanged.
type Patch struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active"`
}

// Change is the storage-level form of a Patch: the password already hashed,
// nil fields untouched. A Change is written in a single statement so a
// multi-field update either lands whole or not at all.
type Change struct {
	Username     *string
	PasswordHash *string
	IsActive     *bool
}

// List pages over all accounts.
func (s *Service) List(ctx context.Context, p query.Params) (query.Page[User], error) {
	return s.repo.List(ctx, p)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.ByID(ctx, id)
}

// Update applies a partial update. A new password is hashed here so the
// repository only ever sees bcrypt output.
func (s *Service) Update(ctx context.Context, actorID, id int64, patch Patch) (*User, error) {
	if _, err := s.repo.ByID(ctx, id); err != nil {
		return nil, err
	}
	change := Change{Username: patch.Username, IsActive: patch.IsActive}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("users: hash password: %w", err)
		}
		hashed := string(hash)
		change.PasswordHash = &hashed
	}
	if change != (Change{}) {
		if err := s.repo.Apply(ctx, id, change); err != nil {
			return nil, err
		}
	}
	s.auditor.Record(ctx, audit.Record{ActorID: actorID, Action: "update", Entity: "user", EntityID: id})
	return s.repo.ByID(ctx, id)
}

// Delete removes an account. Self-deletion is rejected so an administrator
// cannot lock themselves out mid-session.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete own account", httpx.ErrValidation)
	}
	if _, err := s.repo.ByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Record{ActorID: actorID, Action: "delete", Entity: "user", EntityID: id})
	return nil
}
