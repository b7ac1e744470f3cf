package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhive/carhive/internal/platform/httpx"
)

func TestAuthorizeAnyPermissionShortCircuitsOwnership(t *testing.T) {
	p := principalWith(PermCarsDelete, PermCarsDeleteOwn)

	// Resource owned by someone else: the blanket permission wins without an
	// ownership comparison.
	decision, err := Authorize(p, PermCarsDelete, PermCarsDeleteOwn, p.ID+1)
	require.NoError(t, err)
	assert.Equal(t, BranchAny, decision.Branch)

	// Holding both and owning the resource still authorizes via "any".
	decision, err = Authorize(p, PermCarsDelete, PermCarsDeleteOwn, p.ID)
	require.NoError(t, err)
	assert.Equal(t, BranchAny, decision.Branch)
}

func TestAuthorizeOwnBranch(t *testing.T) {
	p := principalWith(PermCarsDeleteOwn)

	decision, err := Authorize(p, PermCarsDelete, PermCarsDeleteOwn, p.ID)
	require.NoError(t, err)
	assert.Equal(t, BranchOwn, decision.Branch)
}

func TestAuthorizeOwnDeniedForForeignResource(t *testing.T) {
	p := principalWith(PermCarsDeleteOwn)

	_, err := Authorize(p, PermCarsDelete, PermCarsDeleteOwn, p.ID+1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestAuthorizeNoPermissionDeniedRegardlessOfOwnership(t *testing.T) {
	p := principalWith(PermCarsRead)

	_, err := Authorize(p, PermCarsDelete, PermCarsDeleteOwn, p.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPermission)

	_, err = Authorize(p, PermCarsDelete, PermCarsDeleteOwn, p.ID+1)
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestAuthorizeNoRoles(t *testing.T) {
	_, err := Authorize(Principal{ID: 9}, PermCarsDelete, PermCarsDeleteOwn, 9)
	assert.ErrorIs(t, err, httpx.ErrRoleNotAssigned)
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(principalWith(PermCarsRead), PermCarsRead))
	assert.ErrorIs(t, Require(principalWith(PermCarsRead), PermCarsWrite), ErrNoPermission)
	assert.ErrorIs(t, Require(Principal{ID: 1}, PermCarsRead), httpx.ErrRoleNotAssigned)
}
