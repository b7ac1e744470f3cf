package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

type mockRepo struct {
	brands      map[int64]Brand
	models      map[int64]Model
	submodels   map[int64]Submodel
	generations map[int64]Generation
	specs       map[int64]Spec
	nextID      int64
	writes      int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		brands:      map[int64]Brand{},
		models:      map[int64]Model{},
		submodels:   map[int64]Submodel{},
		generations: map[int64]Generation{},
		specs:       map[int64]Spec{},
	}
}

func (m *mockRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func pageOf[T any](items []T) query.Page[T] {
	if items == nil {
		items = []T{}
	}
	return query.Page[T]{Data: items, Meta: query.NewMeta(1, 10, len(items))}
}

func (m *mockRepo) CreateBrand(_ context.Context, b *Brand) error {
	b.ID = m.id()
	m.brands[b.ID] = *b
	return nil
}

func (m *mockRepo) BrandByID(_ context.Context, id int64) (*Brand, error) {
	b, ok := m.brands[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &b, nil
}

func (m *mockRepo) ListBrands(_ context.Context, _ query.Params) (query.Page[Brand], error) {
	var out []Brand
	for _, b := range m.brands {
		out = append(out, b)
	}
	return pageOf(out), nil
}

func (m *mockRepo) UpdateBrand(_ context.Context, b *Brand) error {
	m.writes++
	m.brands[b.ID] = *b
	return nil
}

func (m *mockRepo) DeleteBrand(_ context.Context, id int64) error {
	delete(m.brands, id)
	return nil
}

func (m *mockRepo) CreateModel(_ context.Context, md *Model) error {
	md.ID = m.id()
	m.models[md.ID] = *md
	return nil
}

func (m *mockRepo) ModelByID(_ context.Context, id int64) (*Model, error) {
	md, ok := m.models[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &md, nil
}

func (m *mockRepo) ListModels(_ context.Context, brandID int64, _ query.Params) (query.Page[Model], error) {
	var out []Model
	for _, md := range m.models {
		if md.BrandID == brandID {
			out = append(out, md)
		}
	}
	return pageOf(out), nil
}

func (m *mockRepo) UpdateModel(_ context.Context, md *Model) error {
	m.writes++
	m.models[md.ID] = *md
	return nil
}

func (m *mockRepo) DeleteModel(_ context.Context, id int64) error {
	delete(m.models, id)
	return nil
}

func (m *mockRepo) CreateSubmodel(_ context.Context, sm *Submodel) error {
	sm.ID = m.id()
	m.submodels[sm.ID] = *sm
	return nil
}

func (m *mockRepo) SubmodelByID(_ context.Context, id int64) (*Submodel, error) {
	sm, ok := m.submodels[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &sm, nil
}

func (m *mockRepo) ListSubmodels(_ context.Context, modelID int64, _ query.Params) (query.Page[Submodel], error) {
	var out []Submodel
	for _, sm := range m.submodels {
		if sm.ModelID == modelID {
			out = append(out, sm)
		}
	}
	return pageOf(out), nil
}

func (m *mockRepo) UpdateSubmodel(_ context.Context, sm *Submodel) error {
	m.writes++
	m.submodels[sm.ID] = *sm
	return nil
}

func (m *mockRepo) DeleteSubmodel(_ context.Context, id int64) error {
	delete(m.submodels, id)
	return nil
}

func (m *mockRepo) CreateGeneration(_ context.Context, g *Generation) error {
	g.ID = m.id()
	m.generations[g.ID] = *g
	return nil
}

func (m *mockRepo) GenerationByID(_ context.Context, id int64) (*Generation, error) {
	g, ok := m.generations[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &g, nil
}

func (m *mockRepo) ListGenerations(_ context.Context, submodelID int64, _ query.Params) (query.Page[Generation], error) {
	var out []Generation
	for _, g := range m.generations {
		if g.SubmodelID == submodelID {
			out = append(out, g)
		}
	}
	return pageOf(out), nil
}

func (m *mockRepo) UpdateGeneration(_ context.Context, g *Generation) error {
	m.writes++
	m.generations[g.ID] = *g
	return nil
}

func (m *mockRepo) DeleteGeneration(_ context.Context, id int64) error {
	delete(m.generations, id)
	return nil
}

func (m *mockRepo) CreateSpec(_ context.Context, sp *Spec) error {
	sp.ID = m.id()
	m.specs[sp.ID] = *sp
	return nil
}

func (m *mockRepo) SpecByID(_ context.Context, id int64) (*Spec, error) {
	sp, ok := m.specs[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &sp, nil
}

func (m *mockRepo) ListSpecs(_ context.Context, generationID int64, _ query.Params) (query.Page[Spec], error) {
	var out []Spec
	for _, sp := range m.specs {
		if sp.GenerationID == generationID {
			out = append(out, sp)
		}
	}
	return pageOf(out), nil
}

func (m *mockRepo) UpdateSpec(_ context.Context, sp *Spec) error {
	m.writes++
	m.specs[sp.ID] = *sp
	return nil
}

func (m *mockRepo) DeleteSpec(_ context.Context, id int64) error {
	delete(m.specs, id)
	return nil
}

type captureRecorder struct {
	recs []audit.Record
}

func (c *captureRecorder) Record(_ context.Context, rec audit.Record) {
	c.recs = append(c.recs, rec)
}

func principalWith(id int64, perms ...string) rbac.Principal {
	ps := make([]rbac.Permission, 0, len(perms))
	for _, name := range perms {
		ps = append(ps, rbac.Permission{Name: name})
	}
	return rbac.Principal{
		ID:       id,
		Username: "tester",
		IsActive: true,
		Roles:    []rbac.Role{{ID: 1, Name: "test", Permissions: ps}},
	}
}

func newTestService(repo Repository, rec audit.Recorder) *Service {
	return NewService(repo, rec, nil)
}

func TestCreateBrandRequiresWrite(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)

	_, err := svc.CreateBrand(context.Background(), principalWith(1, rbac.PermCarsRead), "Toyota")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	brand, err := svc.CreateBrand(context.Background(), principalWith(1, rbac.PermCarsWrite), "Toyota")
	require.NoError(t, err)
	require.NotZero(t, brand.ID)
	require.Equal(t, int64(1), brand.CreatedBy)
}

func TestListBrandsRequiresRead(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)

	_, err := svc.ListBrands(context.Background(), principalWith(1), query.Params{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestCreateModelUnknownBrand(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)

	_, err := svc.CreateModel(context.Background(), principalWith(1, rbac.PermCarsWrite), 42, "Corolla")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGetModelCrossParentIsNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	writer := principalWith(1, rbac.PermCarsWrite, rbac.PermCarsRead)

	toyota, err := svc.CreateBrand(context.Background(), writer, "Toyota")
	require.NoError(t, err)
	honda, err := svc.CreateBrand(context.Background(), writer, "Honda")
	require.NoError(t, err)
	corolla, err := svc.CreateModel(context.Background(), writer, toyota.ID, "Corolla")
	require.NoError(t, err)

	got, err := svc.GetModel(context.Background(), writer, toyota.ID, corolla.ID)
	require.NoError(t, err)
	require.Equal(t, "Corolla", got.Name)

	_, err = svc.GetModel(context.Background(), writer, honda.ID, corolla.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateBrandBlanketPermission(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	owner := principalWith(1, rbac.PermCarsWrite)
	editor := principalWith(2, rbac.PermCarsWrite)

	brand, err := svc.CreateBrand(context.Background(), owner, "Toyota")
	require.NoError(t, err)

	name := "Toyota Motor"
	updated, err := svc.UpdateBrand(context.Background(), editor, brand.ID, BrandPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Toyota Motor", updated.Name)
	require.Equal(t, int64(1), updated.CreatedBy)
}

func TestUpdateBrandOwnOnly(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	admin := principalWith(1, rbac.PermCarsWrite)

	mine, err := svc.CreateBrand(context.Background(), admin, "Mine")
	require.NoError(t, err)

	limited := principalWith(1, rbac.PermCarsUpdateOwn)
	name := "Renamed"
	updated, err := svc.UpdateBrand(context.Background(), limited, mine.ID, BrandPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	stranger := principalWith(7, rbac.PermCarsUpdateOwn)
	_, err = svc.UpdateBrand(context.Background(), stranger, mine.ID, BrandPatch{Name: &name})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateWithoutAnyGrantDenied(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	admin := principalWith(1, rbac.PermCarsWrite)

	brand, err := svc.CreateBrand(context.Background(), admin, "Toyota")
	require.NoError(t, err)

	// Even the owner is denied when no update permission is granted.
	name := "Nope"
	_, err = svc.UpdateBrand(context.Background(), principalWith(1, rbac.PermCarsRead), brand.ID, BrandPatch{Name: &name})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateEmptyPatchSkipsStorage(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	admin := principalWith(1, rbac.PermCarsWrite)

	brand, err := svc.CreateBrand(context.Background(), admin, "Toyota")
	require.NoError(t, err)

	updated, err := svc.UpdateBrand(context.Background(), admin, brand.ID, BrandPatch{})
	require.NoError(t, err)
	require.Equal(t, "Toyota", updated.Name)
	require.Zero(t, repo.writes)
}

func TestDeleteSpecOwnership(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	admin := principalWith(1, rbac.PermCarsWrite)

	brand, err := svc.CreateBrand(context.Background(), admin, "Toyota")
	require.NoError(t, err)
	model, err := svc.CreateModel(context.Background(), admin, brand.ID, "Corolla")
	require.NoError(t, err)
	submodel, err := svc.CreateSubmodel(context.Background(), admin, model.ID, "Hatchback")
	require.NoError(t, err)
	gen, err := svc.CreateGeneration(context.Background(), admin, submodel.ID, GenerationInput{Name: "E210"})
	require.NoError(t, err)
	spec, err := svc.CreateSpec(context.Background(), admin, gen.ID, SpecInput{})
	require.NoError(t, err)

	stranger := principalWith(9, rbac.PermCarsDeleteOwn)
	err = svc.DeleteSpec(context.Background(), stranger, gen.ID, spec.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	ownerScoped := principalWith(1, rbac.PermCarsDeleteOwn)
	require.NoError(t, svc.DeleteSpec(context.Background(), ownerScoped, gen.ID, spec.ID))

	_, err = repo.SpecByID(context.Background(), spec.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRoleNotAssignedIsNotForbidden(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	noRoles := rbac.Principal{ID: 3, Username: "rookie", IsActive: true}

	_, err := svc.ListBrands(context.Background(), noRoles, query.Params{})
	require.ErrorIs(t, err, httpx.ErrRoleNotAssigned)
	require.NotErrorIs(t, err, httpx.ErrForbidden)
}

func TestMutationsAreAudited(t *testing.T) {
	repo := newMockRepo()
	rec := &captureRecorder{}
	svc := newTestService(repo, rec)
	admin := principalWith(1, rbac.PermCarsWrite, rbac.PermCarsDelete)

	brand, err := svc.CreateBrand(context.Background(), admin, "Toyota")
	require.NoError(t, err)

	name := "Toyota Motor"
	_, err = svc.UpdateBrand(context.Background(), admin, brand.ID, BrandPatch{Name: &name})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBrand(context.Background(), admin, brand.ID))

	require.Len(t, rec.recs, 3)
	require.Equal(t, "create", rec.recs[0].Action)
	require.Equal(t, "brand", rec.recs[0].Entity)
	require.Equal(t, brand.ID, rec.recs[0].EntityID)
	require.Equal(t, "update", rec.recs[1].Action)
	require.Equal(t, map[string]any{"branch": "any"}, rec.recs[1].Meta)
	require.Equal(t, "delete", rec.recs[2].Action)
}
