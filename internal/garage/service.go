// Package garage manages the per-user collection of saved car specs.
package garage

import (
	"context"
	"log/slog"

	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/catalog"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

// Repository provides persistence for the saved-cars join set.
type Repository interface {
	ListCars(ctx context.Context, userID int64, p query.Params) (query.Page[catalog.Spec], error)
	AddCar(ctx context.Context, userID, specID int64) error
	RemoveCar(ctx context.Context, userID, specID int64) error
}

// Service applies the garage permission and records mutations. Every
// operation is scoped to the calling principal; there is no way to reach
// another user's garage.
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

// List pages over the caller's saved specs with the same filter and sort
// surface as the catalog spec listing.
func (s *Service) List(ctx context.Context, principal rbac.Principal, p query.Params) (query.Page[catalog.Spec], error) {
	if err := rbac.Require(principal, rbac.PermMyCars); err != nil {
		return query.Page[catalog.Spec]{}, err
	}
	return s.repo.ListCars(ctx, principal.ID, p)
}

// Add saves a spec into the caller's garage. Saving the same spec twice is a
// duplicate; saving a spec that does not exist is not-found.
func (s *Service) Add(ctx context.Context, principal rbac.Principal, specID int64) error {
	if err := rbac.Require(principal, rbac.PermMyCars); err != nil {
		return err
	}
	if err := s.repo.AddCar(ctx, principal.ID, specID); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Record{ActorID: principal.ID, Action: "add", Entity: "garage_car", EntityID: specID})
	return nil
}

// Remove drops a spec from the caller's garage.
func (s *Service) Remove(ctx context.Context, principal rbac.Principal, specID int64) error {
	if err := rbac.Require(principal, rbac.PermMyCars); err != nil {
		return err
	}
	if err := s.repo.RemoveCar(ctx, principal.ID, specID); err != nil {
		return err
	}
	s.auditor.Record(ctx, audit.Record{ActorID: principal.ID, Action: "remove", Entity: "garage_car", EntityID: specID})
	return nil
}
