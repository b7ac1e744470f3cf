package catalog

import (
	"context"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/rbac"
)

// resource is the one engine behind the per-entity CRUD façades. Each entity
// type configures it with accessors instead of repeating the existence,
// parent-match and ownership-authorization flow five times.
type resource[T any] struct {
	entity string
	byID   func(ctx context.Context, id int64) (*T, error)
	parent func(*T) int64
	owner  func(*T) int64
	store  func(ctx context.Context, item *T) error
	remove func(ctx context.Context, id int64) error
}

// fetch loads the row and verifies its recorded parent. A parent mismatch is
// reported as not-found so ids cannot be probed across parents.
func (r resource[T]) fetch(ctx context.Context, parentID, id int64) (*T, error) {
	item, err := r.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.parent(item) != parentID {
		return nil, httpx.ErrNotFound
	}
	return item, nil
}

// applyUpdate runs the ownership-scoped update flow. The patch mutates the
// loaded row in place and reports whether it changed anything; an empty patch
// succeeds without touching storage and returns the row as it was.
func (r resource[T]) applyUpdate(ctx context.Context, principal rbac.Principal, parentID, id int64, patch func(*T) bool) (*T, rbac.Decision, error) {
	item, err := r.fetch(ctx, parentID, id)
	if err != nil {
		return nil, rbac.Decision{}, err
	}
	decision, err := rbac.Authorize(principal, rbac.PermCarsWrite, rbac.PermCarsUpdateOwn, r.owner(item))
	if err != nil {
		return nil, rbac.Decision{}, err
	}
	if !patch(item) {
		return item, decision, nil
	}
	if err := r.store(ctx, item); err != nil {
		return nil, rbac.Decision{}, err
	}
	return item, decision, nil
}

// applyDelete runs the ownership-scoped delete flow. Dependent children go
// with the row through the storage cascade rule.
func (r resource[T]) applyDelete(ctx context.Context, principal rbac.Principal, parentID, id int64) (rbac.Decision, error) {
	item, err := r.fetch(ctx, parentID, id)
	if err != nil {
		return rbac.Decision{}, err
	}
	decision, err := rbac.Authorize(principal, rbac.PermCarsDelete, rbac.PermCarsDeleteOwn, r.owner(item))
	if err != nil {
		return rbac.Decision{}, err
	}
	if err := r.remove(ctx, id); err != nil {
		return rbac.Decision{}, err
	}
	return decision, nil
}
