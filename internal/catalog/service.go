package catalog

import (
	"context"
	"log/slog"

	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

// Service composes authorization and pagination into the catalog CRUD
// operations. It is the only layer aware of the parent/child relationships
// between entity types.
type Service struct {
	repo    Repository
	auditor audit.Recorder
	logger  *slog.Logger

	brands      resource[Brand]
	models      resource[Model]
	submodels   resource[Submodel]
	generations resource[Generation]
	specs       resource[Spec]
}

// NewService builds a Service instance.
func NewService(repo Repository, auditor audit.Recorder, logger *slog.Logger) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	s := &Service{repo: repo, auditor: auditor, logger: logger}

	s.brands = resource[Brand]{
		entity: "brand",
		byID:   repo.BrandByID,
		parent: func(*Brand) int64 { return 0 },
		owner:  func(b *Brand) int64 { return b.CreatedBy },
		store:  repo.UpdateBrand,
		remove: repo.DeleteBrand,
	}
	s.models = resource[Model]{
		entity: "model",
		byID:   repo.ModelByID,
		parent: func(m *Model) int64 { return m.BrandID },
		owner:  func(m *Model) int64 { return m.CreatedBy },
		store:  repo.UpdateModel,
		remove: repo.DeleteModel,
	}
	s.submodels = resource[Submodel]{
		entity: "submodel",
		byID:   repo.SubmodelByID,
		parent: func(sm *Submodel) int64 { return sm.ModelID },
		owner:  func(sm *Submodel) int64 { return sm.CreatedBy },
		store:  repo.UpdateSubmodel,
		remove: repo.DeleteSubmodel,
	}
	s.generations = resource[Generation]{
		entity: "generation",
		byID:   repo.GenerationByID,
		parent: func(g *Generation) int64 { return g.SubmodelID },
		owner:  func(g *Generation) int64 { return g.CreatedBy },
		store:  repo.UpdateGeneration,
		remove: repo.DeleteGeneration,
	}
	s.specs = resource[Spec]{
		entity: "spec",
		byID:   repo.SpecByID,
		parent: func(sp *Spec) int64 { return sp.GenerationID },
		owner:  func(sp *Spec) int64 { return sp.CreatedBy },
		store:  repo.UpdateSpec,
		remove: repo.DeleteSpec,
	}
	return s
}

func (s *Service) record(ctx context.Context, principal rbac.Principal, action, entity string, id int64, decision rbac.Decision) {
	rec := audit.Record{ActorID: principal.ID, Action: action, Entity: entity, EntityID: id}
	if decision.Branch != "" {
		rec.Meta = map[string]any{"branch": string(decision.Branch)}
	}
	s.auditor.Record(ctx, rec)
}

// Patch types carry partial updates; nil fields are left unchanged.

// BrandPatch updates a brand.
type BrandPatch struct {
	Name *string `json:"name"`
}

func (p BrandPatch) apply(b *Brand) bool {
	changed := false
	if p.Name != nil {
		b.Name = *p.Name
		changed = true
	}
	return changed
}

// ModelPatch updates a model.
type ModelPatch struct {
	Name *string `json:"name"`
}

func (p ModelPatch) apply(m *Model) bool {
	changed := false
	if p.Name != nil {
		m.Name = *p.Name
		changed = true
	}
	return changed
}

// SubmodelPatch updates a submodel.
type SubmodelPatch struct {
	Name *string `json:"name"`
}

func (p SubmodelPatch) apply(sm *Submodel) bool {
	changed := false
	if p.Name != nil {
		sm.Name = *p.Name
		changed = true
	}
	return changed
}

// GenerationInput carries the writable generation fields.
type GenerationInput struct {
	Name      string
	YearStart *int
	YearEnd   *int
}

// GenerationPatch updates a generation.
type GenerationPatch struct {
	Name      *string `json:"name"`
	YearStart *int    `json:"year_start"`
	YearEnd   *int    `json:"year_end"`
}

func (p GenerationPatch) apply(g *Generation) bool {
	changed := false
	if p.Name != nil {
		g.Name = *p.Name
		changed = true
	}
	if p.YearStart != nil {
		g.YearStart = p.YearStart
		changed = true
	}
	if p.YearEnd != nil {
		g.YearEnd = p.YearEnd
		changed = true
	}
	return changed
}

// SpecInput carries the writable spec fields.
type SpecInput struct {
	Engine     *string
	Horsepower *int
	Torque     *int
	FuelType   *string
	Year       *int
}

// SpecPatch updates a spec.
type SpecPatch struct {
	Engine     *string `json:"engine"`
	Horsepower *int    `json:"horsepower"`
	Torque     *int    `json:"torque"`
	FuelType   *string `json:"fuel_type"`
	Year       *int    `json:"year"`
}

func (p SpecPatch) apply(sp *Spec) bool {
	changed := false
	if p.Engine != nil {
		sp.Engine = p.Engine
		changed = true
	}
	if p.Horsepower != nil {
		sp.Horsepower = p.Horsepower
		changed = true
	}
	if p.Torque != nil {
		sp.Torque = p.Torque
		changed = true
	}
	if p.FuelType != nil {
		sp.FuelType = p.FuelType
		changed = true
	}
	if p.Year != nil {
		sp.Year = p.Year
		changed = true
	}
	return changed
}

// Brands

func (s *Service) CreateBrand(ctx context.Context, principal rbac.Principal, name string) (*Brand, error) {
	if err := rbac.Require(principal, rbac.PermCarsWrite); err != nil {
		return nil, err
	}
	brand := &Brand{Name: name, CreatedBy: principal.ID}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, err
	}
	s.record(ctx, principal, "create", "brand", brand.ID, rbac.Decision{})
	return brand, nil
}

func (s *Service) GetBrand(ctx context.Context, principal rbac.Principal, id int64) (*Brand, error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return nil, err
	}
	return s.repo.BrandByID(ctx, id)
}

func (s *Service) ListBrands(ctx context.Context, principal rbac.Principal, p query.Params) (query.Page[Brand], error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return query.Page[Brand]{}, err
	}
	return s.repo.ListBrands(ctx, p)
}

func (s *Service) UpdateBrand(ctx context.Context, principal rbac.Principal, id int64, patch BrandPatch) (*Brand, error) {
	brand, decision, err := s.brands.applyUpdate(ctx, principal, 0, id, patch.apply)
	if err != nil {
		return nil, err
	}
	s.record(ctx, principal, "update", "brand", id, decision)
	return brand, nil
}

func (s *Service) DeleteBrand(ctx context.Context, principal rbac.Principal, id int64) error {
	decision, err := s.brands.applyDelete(ctx, principal, 0, id)
	if err != nil {
		return err
	}
	s.record(ctx, principal, "delete", "brand", id, decision)
	return nil
}

// Models

func (s *Service) CreateModel(ctx context.Context, principal rbac.Principal, brandID int64, name string) (*Model, error) {
	if err := rbac.Require(principal, rbac.PermCarsWrite); err != nil {
		return nil, err
	}
	if _, err := s.repo.BrandByID(ctx, brandID); err != nil {
		return nil, err
	}
	model := &Model{BrandID: brandID, Name: name, CreatedBy: principal.ID}
	if err := s.repo.CreateModel(ctx, model); err != nil {
		return nil, err
	}
	s.record(ctx, principal, "create", "model", model.ID, rbac.Decision{})
	return model, nil
}

func (s *Service) GetModel(ctx context.Context, principal rbac.Principal, brandID, id int64) (*Model, error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return nil, err
	}
	return s.models.fetch(ctx, brandID, id)
}

func (s *Service) ListModels(ctx context.Context, principal rbac.Principal, brandID int64, p query.Params) (query.Page[Model], error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return query.Page[Model]{}, err
	}
	if _, err := s.repo.BrandByID(ctx, brandID); err != nil {
		return query.Page[Model]{}, err
	}
	return s.repo.ListModels(ctx, brandID, p)
}

func (s *Service) UpdateModel(ctx context.Context, principal rbac.Principal, brandID, id int64, patch ModelPatch) (*Model, error) {
	model, decision, err := s.models.applyUpdate(ctx, principal, brandID, id, patch.apply)
	if err != nil {
		return nil, err
	}
	s.record(ctx, principal, "update", "model", id, decision)
	return model, nil
}

func (s *Service) DeleteModel(ctx context.Context, principal rbac.Principal, brandID, id int64) error {
	decision, err := s.models.applyDelete(ctx, principal, brandID, id)
	if err != nil {
		return err
	}
	s.record(ctx, principal, "delete", "model", id, decision)
	return nil
}

// Submodels

func (s *Service) CreateSubmodel(ctx context.Context, principal rbac.Principal, modelID int64, name string) (*Submodel, error) {
	if err := rbac.Require(principal, rbac.PermCarsWrite); err != nil {
		return nil, err
	}
	if _, err := s.repo.ModelByID(ctx, modelID); err != nil {
		return nil, err
	}
	submodel := &Submodel{ModelID: modelID, Name: name, CreatedBy: principal.ID}
	if err := s.repo.CreateSubmodel(ctx, submodel); err != nil {
		return nil, err
	}
	s.record(ctx, principal, "create", "submodel", submodel.ID, rbac.Decision{})
	return submodel, nil
}

func (s *Service) GetSubmodel(ctx context.Context, principal rbac.Principal, modelID, id int64) (*Submodel, error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return nil, err
	}
	return s.submodels.fetch(ctx, modelID, id)
}

func (s *Service) ListSubmodels(ctx context.Context, principal rbac.Principal, modelID int64, p query.Params) (query.Page[Submodel], error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return query.Page[Submodel]{}, err
	}
	if _, err := s.repo.ModelByID(ctx, modelID); err != nil {
		return query.Page[Submodel]{}, err
	}
	return s.repo.ListSubmodels(ctx, modelID, p)
}

func (s *Service) UpdateSubmodel(ctx context.Context, principal rbac.Principal, modelID, id int64, patch SubmodelPatch) (*Submodel, error) {
	submodel, decision, err := s.submodels.applyUpdate(ctx, principal, modelID, id, patch.apply)
	if err != nil {
		return nil, err
	}
	s.record(ctx, principal, "update", "submodel", id, decision)
	return submodel, nil
}

func (s *Service) DeleteSubmodel(ctx context.Context, principal rbac.Principal, modelID, id int64) error {
	decision, err := s.submodels.applyDelete(ctx, principal, modelID, id)
	if err != nil {
		return err
	}
	s.record(ctx, principal, "delete", "submodel", id, decision)
	return nil
}

// Generations

func (s *Service) CreateGeneration(ctx context.Context, principal rbac.Principal, submodelID int64, input GenerationInput) (*Generation, error) {
	if err := rbac.Require(principal, rbac.PermCarsWrite); err != nil {
		return nil, err
	}
	if _, err := s.repo.SubmodelByID(ctx, submodelID); err != nil {
		return nil, err
	}
	gen := &Generation{
		SubmodelID: submodelID,
		Name:       input.Name,
		YearStart:  input.YearStart,
		YearEnd:    input.YearEnd,
		CreatedBy:  principal.ID,
	}
	if err := s.repo.CreateGeneration(ctx, gen); err != nil {
		return nil, err
	}
	s.record(ctx, principal, "create", "generation", gen.ID, rbac.Decision{})
	return gen, nil
}

func (s *Service) GetGeneration(ctx context.Context, principal rbac.Principal, submodelID, id int64) (*Generation, error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return nil, err
	}
	return s.generations.fetch(ctx, submodelID, id)
}

func (s *Service) ListGenerations(ctx context.Context, principal rbac.Principal, submodelID int64, p query.Params) (query.Page[Generation], error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return query.Page[Generation]{}, err
	}
	if _, err := s.repo.SubmodelByID(ctx, submodelID); err != nil {
		return query.Page[Generation]{}, err
	}
	return s.repo.ListGenerations(ctx, submodelID, p)
}

func (s *Service) UpdateGeneration(ctx context.Context, principal rbac.Principal, submodelID, id int64, patch GenerationPatch) (*Generation, error) {
	gen, decision, err := s.generations.applyUpdate(ctx, principal, submodelID, id, patch.apply)
	if err != nil {
		return nil, err
	}
	s.record(ctx, principal, "update", "generation", id, decision)
	return gen, nil
}

func (s *Service) DeleteGeneration(ctx context.Context, principal rbac.Principal, submodelID, id int64) error {
	decision, err := s.generations.applyDelete(ctx, principal, submodelID, id)
	if err != nil {
		return err
	}
	s.record(ctx, principal, "delete", "generation", id, decision)
	return nil
}

// Specs

func (s *Service) CreateSpec(ctx context.Context, principal rbac.Principal, generationID int64, input SpecInput) (*Spec, error) {
	if err := rbac.Require(principal, rbac.PermCarsWrite); err != nil {
		return nil, err
	}
	if _, err := s.repo.GenerationByID(ctx, generationID); err != nil {
		return nil, err
	}
	spec := &Spec{
		GenerationID: generationID,
		Engine:       input.Engine,
		Horsepower:   input.Horsepower,
		Torque:       input.Torque,
		FuelType:     input.FuelType,
		Year:         input.Year,
		CreatedBy:    principal.ID,
	}
	if err := s.repo.CreateSpec(ctx, spec); err != nil {
		return nil, err
	}
	s.record(ctx, principal, "create", "spec", spec.ID, rbac.Decision{})
	return spec, nil
}

func (s *Service) GetSpec(ctx context.Context, principal rbac.Principal, generationID, id int64) (*Spec, error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return nil, err
	}
	return s.specs.fetch(ctx, generationID, id)
}

func (s *Service) ListSpecs(ctx context.Context, principal rbac.Principal, generationID int64, p query.Params) (query.Page[Spec], error) {
	if err := rbac.Require(principal, rbac.PermCarsRead); err != nil {
		return query.Page[Spec]{}, err
	}
	if _, err := s.repo.GenerationByID(ctx, generationID); err != nil {
		return query.Page[Spec]{}, err
	}
	return s.repo.ListSpecs(ctx, generationID, p)
}

func (s *Service) UpdateSpec(ctx context.Context, principal rbac.Principal, generationID, id int64, patch SpecPatch) (*Spec, error) {
	spec, decision, err := s.specs.applyUpdate(ctx, principal, generationID, id, patch.apply)
	if err != nil {
		return nil, err
	}
	s.record(ctx, principal, "update", "spec", id, decision)
	return spec, nil
}

func (s *Service) DeleteSpec(ctx context.Context, principal rbac.Principal, generationID, id int64) error {
	decision, err := s.specs.applyDelete(ctx, principal, generationID, id)
	if err != nil {
		return err
	}
	s.record(ctx, principal, "delete", "spec", id, decision)
	return nil
}
