package garage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/catalog"
	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

type key struct{ user, spec int64 }

type mockRepo struct {
	specs map[int64]catalog.Spec
	saved map[key]bool
}

func newMockRepo(specIDs ...int64) *mockRepo {
	m := &mockRepo{specs: map[int64]catalog.Spec{}, saved: map[key]bool{}}
	for _, id := range specIDs {
		m.specs[id] = catalog.Spec{ID: id}
	}
	return m
}

func (m *mockRepo) ListCars(_ context.Context, userID int64, _ query.Params) (query.Page[catalog.Spec], error) {
	out := []catalog.Spec{}
	for k := range m.saved {
		if k.user == userID {
			out = append(out, m.specs[k.spec])
		}
	}
	return query.Page[catalog.Spec]{Data: out, Meta: query.NewMeta(1, 10, len(out))}, nil
}

func (m *mockRepo) AddCar(_ context.Context, userID, specID int64) error {
	if _, ok := m.specs[specID]; !ok {
		return httpx.ErrNotFound
	}
	k := key{userID, specID}
	if m.saved[k] {
		return httpx.ErrDuplicate
	}
	m.saved[k] = true
	return nil
}

func (m *mockRepo) RemoveCar(_ context.Context, userID, specID int64) error {
	k := key{userID, specID}
	if !m.saved[k] {
		return httpx.ErrNotFound
	}
	delete(m.saved, k)
	return nil
}

type captureRecorder struct {
	recs []audit.Record
}

func (c *captureRecorder) Record(_ context.Context, rec audit.Record) {
	c.recs = append(c.recs, rec)
}

func garagePrincipal(id int64) rbac.Principal {
	return rbac.Principal{
		ID:       id,
		Username: "collector",
		IsActive: true,
		Roles: []rbac.Role{{
			ID:          1,
			Name:        "User",
			Permissions: []rbac.Permission{{Name: rbac.PermMyCars}},
		}},
	}
}

func TestGarageRequiresPermission(t *testing.T) {
	svc := NewService(newMockRepo(1), nil, nil)
	reader := rbac.Principal{
		ID:       5,
		IsActive: true,
		Roles:    []rbac.Role{{ID: 1, Name: "viewer", Permissions: []rbac.Permission{{Name: rbac.PermCarsRead}}}},
	}

	_, err := svc.List(context.Background(), reader, query.Params{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.ErrorIs(t, svc.Add(context.Background(), reader, 1), httpx.ErrForbidden)
	require.ErrorIs(t, svc.Remove(context.Background(), reader, 1), httpx.ErrForbidden)
}

func TestGarageAddListRemove(t *testing.T) {
	repo := newMockRepo(10, 11)
	svc := NewService(repo, nil, nil)
	p := garagePrincipal(5)

	require.NoError(t, svc.Add(context.Background(), p, 10))
	require.NoError(t, svc.Add(context.Background(), p, 11))

	page, err := svc.List(context.Background(), p, query.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, 2, page.Meta.TotalItems)

	require.NoError(t, svc.Remove(context.Background(), p, 10))
	page, err = svc.List(context.Background(), p, query.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
}

func TestGarageAddDuplicate(t *testing.T) {
	svc := NewService(newMockRepo(10), nil, nil)
	p := garagePrincipal(5)

	require.NoError(t, svc.Add(context.Background(), p, 10))
	require.ErrorIs(t, svc.Add(context.Background(), p, 10), httpx.ErrDuplicate)
}

func TestGarageAddUnknownSpec(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)

	err := svc.Add(context.Background(), garagePrincipal(5), 99)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGarageRemoveNotSaved(t *testing.T) {
	svc := NewService(newMockRepo(10), nil, nil)

	err := svc.Remove(context.Background(), garagePrincipal(5), 10)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGarageIsolatedPerUser(t *testing.T) {
	repo := newMockRepo(10)
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.Add(context.Background(), garagePrincipal(5), 10))

	page, err := svc.List(context.Background(), garagePrincipal(6), query.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Empty(t, page.Data)
}

func TestGarageMutationsAudited(t *testing.T) {
	rec := &captureRecorder{}
	svc := NewService(newMockRepo(10), rec, nil)
	p := garagePrincipal(5)

	require.NoError(t, svc.Add(context.Background(), p, 10))
	require.NoError(t, svc.Remove(context.Background(), p, 10))

	require.Len(t, rec.recs, 2)
	require.Equal(t, "add", rec.recs[0].Action)
	require.Equal(t, "garage_car", rec.recs[0].Entity)
	require.Equal(t, int64(10), rec.recs[0].EntityID)
	require.Equal(t, "remove", rec.recs[1].Action)
}
