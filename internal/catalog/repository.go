package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
)

// Repository provides persistence for the catalog hierarchy. List operations
// page over a record set already scoped to the given parent.
type Repository interface {
	CreateBrand(ctx context.Context, brand *Brand) error
	BrandByID(ctx context.Context, id int64) (*Brand, error)
	ListBrands(ctx context.Context, p query.Params) (query.Page[Brand], error)
	UpdateBrand(ctx context.Context, brand *Brand) error
	DeleteBrand(ctx context.Context, id int64) error

	CreateModel(ctx context.Context, model *Model) error
	ModelByID(ctx context.Context, id int64) (*Model, error)
	ListModels(ctx context.Context, brandID int64, p query.Params) (query.Page[Model], error)
	UpdateModel(ctx context.Context, model *Model) error
	DeleteModel(ctx context.Context, id int64) error

	CreateSubmodel(ctx context.Context, submodel *Submodel) error
	SubmodelByID(ctx context.Context, id int64) (*Submodel, error)
	ListSubmodels(ctx context.Context, modelID int64, p query.Params) (query.Page[Submodel], error)
	UpdateSubmodel(ctx context.Context, submodel *Submodel) error
	DeleteSubmodel(ctx context.Context, id int64) error

	CreateGeneration(ctx context.Context, gen *Generation) error
	GenerationByID(ctx context.Context, id int64) (*Generation, error)
	ListGenerations(ctx context.Context, submodelID int64, p query.Params) (query.Page[Generation], error)
	UpdateGeneration(ctx context.Context, gen *Generation) error
	DeleteGeneration(ctx context.Context, id int64) error

	CreateSpec(ctx context.Context, spec *Spec) error
	SpecByID(ctx context.Context, id int64) (*Spec, error)
	ListSpecs(ctx context.Context, generationID int64, p query.Params) (query.Page[Spec], error)
	UpdateSpec(ctx context.Context, spec *Spec) error
	DeleteSpec(ctx context.Context, id int64) error
}

// PGRepository is the PostgreSQL-backed catalog repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func wrapRowErr(entity string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	if httpx.IsUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	return fmt.Errorf("catalog: %s: %w", entity, err)
}

// Brands

func (r *PGRepository) CreateBrand(ctx context.Context, brand *Brand) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO brands (name, created_by) VALUES ($1, $2) RETURNING id`,
		brand.Name, brand.CreatedBy,
	).Scan(&brand.ID)
	if err != nil {
		return wrapRowErr("create brand", err)
	}
	return nil
}

func (r *PGRepository) BrandByID(ctx context.Context, id int64) (*Brand, error) {
	var b Brand
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(created_by, 0) FROM brands WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.CreatedBy)
	if err != nil {
		return nil, wrapRowErr("get brand", err)
	}
	return &b, nil
}

func (r *PGRepository) ListBrands(ctx context.Context, p query.Params) (query.Page[Brand], error) {
	base := query.Base{
		SelectSQL: `SELECT id, name, COALESCE(created_by, 0) FROM brands`,
		CountSQL:  `SELECT COUNT(*) FROM brands`,
	}
	return query.Run(ctx, r.pool, base, brandFields, p, func(rows pgx.Rows) (Brand, error) {
		var b Brand
		err := rows.Scan(&b.ID, &b.Name, &b.CreatedBy)
		return b, err
	})
}

func (r *PGRepository) UpdateBrand(ctx context.Context, brand *Brand) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE brands SET name = $1 WHERE id = $2`, brand.Name, brand.ID)
	if err != nil {
		return wrapRowErr("update brand", err)
	}
	return nil
}

func (r *PGRepository) DeleteBrand(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return wrapRowErr("delete brand", err)
	}
	return nil
}

// Models

func (r *PGRepository) CreateModel(ctx context.Context, model *Model) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO models (brand_id, name, created_by) VALUES ($1, $2, $3) RETURNING id`,
		model.BrandID, model.Name, model.CreatedBy,
	).Scan(&model.ID)
	if err != nil {
		return wrapRowErr("create model", err)
	}
	return nil
}

func (r *PGRepository) ModelByID(ctx context.Context, id int64) (*Model, error) {
	var m Model
	err := r.pool.QueryRow(ctx,
		`SELECT id, brand_id, name, COALESCE(created_by, 0) FROM models WHERE id = $1`, id,
	).Scan(&m.ID, &m.BrandID, &m.Name, &m.CreatedBy)
	if err != nil {
		return nil, wrapRowErr("get model", err)
	}
	return &m, nil
}

func (r *PGRepository) ListModels(ctx context.Context, brandID int64, p query.Params) (query.Page[Model], error) {
	base := query.Base{
		SelectSQL: `SELECT id, brand_id, name, COALESCE(created_by, 0) FROM models`,
		CountSQL:  `SELECT COUNT(*) FROM models`,
		Where:     `brand_id = $1`,
		Args:      []any{brandID},
	}
	return query.Run(ctx, r.pool, base, modelFields, p, func(rows pgx.Rows) (Model, error) {
		var m Model
		err := rows.Scan(&m.ID, &m.BrandID, &m.Name, &m.CreatedBy)
		return m, err
	})
}

func (r *PGRepository) UpdateModel(ctx context.Context, model *Model) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE models SET name = $1 WHERE id = $2`, model.Name, model.ID)
	if err != nil {
		return wrapRowErr("update model", err)
	}
	return nil
}

func (r *PGRepository) DeleteModel(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM models WHERE id = $1`, id)
	if err != nil {
		return wrapRowErr("delete model", err)
	}
	return nil
}

// Submodels

func (r *PGRepository) CreateSubmodel(ctx context.Context, submodel *Submodel) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submodels (model_id, name, created_by) VALUES ($1, $2, $3) RETURNING id`,
		submodel.ModelID, submodel.Name, submodel.CreatedBy,
	).Scan(&submodel.ID)
	if err != nil {
		return wrapRowErr("create submodel", err)
	}
	return nil
}

func (r *PGRepository) SubmodelByID(ctx context.Context, id int64) (*Submodel, error) {
	var s Submodel
	err := r.pool.QueryRow(ctx,
		`SELECT id, model_id, name, COALESCE(created_by, 0) FROM submodels WHERE id = $1`, id,
	).Scan(&s.ID, &s.ModelID, &s.Name, &s.CreatedBy)
	if err != nil {
		return nil, wrapRowErr("get submodel", err)
	}
	return &s, nil
}

func (r *PGRepository) ListSubmodels(ctx context.Context, modelID int64, p query.Params) (query.Page[Submodel], error) {
	base := query.Base{
		SelectSQL: `SELECT id, model_id, name, COALESCE(created_by, 0) FROM submodels`,
		CountSQL:  `SELECT COUNT(*) FROM submodels`,
		Where:     `model_id = $1`,
		Args:      []any{modelID},
	}
	return query.Run(ctx, r.pool, base, submodelFields, p, func(rows pgx.Rows) (Submodel, error) {
		var s Submodel
		err := rows.Scan(&s.ID, &s.ModelID, &s.Name, &s.CreatedBy)
		return s, err
	})
}

func (r *PGRepository) UpdateSubmodel(ctx context.Context, submodel *Submodel) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submodels SET name = $1 WHERE id = $2`, submodel.Name, submodel.ID)
	if err != nil {
		return wrapRowErr("update submodel", err)
	}
	return nil
}

func (r *PGRepository) DeleteSubmodel(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM submodels WHERE id = $1`, id)
	if err != nil {
		return wrapRowErr("delete submodel", err)
	}
	return nil
}

// Generations

func (r *PGRepository) CreateGeneration(ctx context.Context, gen *Generation) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO generations (submodel_id, name, year_start, year_end, created_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		gen.SubmodelID, gen.Name, gen.YearStart, gen.YearEnd, gen.CreatedBy,
	).Scan(&gen.ID)
	if err != nil {
		return wrapRowErr("create generation", err)
	}
	return nil
}

func (r *PGRepository) GenerationByID(ctx context.Context, id int64) (*Generation, error) {
	var g Generation
	err := r.pool.QueryRow(ctx,
		`SELECT id, submodel_id, name, year_start, year_end, COALESCE(created_by, 0)
		 FROM generations WHERE id = $1`, id,
	).Scan(&g.ID, &g.SubmodelID, &g.Name, &g.YearStart, &g.YearEnd, &g.CreatedBy)
	if err != nil {
		return nil, wrapRowErr("get generation", err)
	}
	return &g, nil
}

func (r *PGRepository) ListGenerations(ctx context.Context, submodelID int64, p query.Params) (query.Page[Generation], error) {
	base := query.Base{
		SelectSQL: `SELECT id, submodel_id, name, year_start, year_end, COALESCE(created_by, 0) FROM generations`,
		CountSQL:  `SELECT COUNT(*) FROM generations`,
		Where:     `submodel_id = $1`,
		Args:      []any{submodelID},
	}
	return query.Run(ctx, r.pool, base, generationFields, p, func(rows pgx.Rows) (Generation, error) {
		var g Generation
		err := rows.Scan(&g.ID, &g.SubmodelID, &g.Name, &g.YearStart, &g.YearEnd, &g.CreatedBy)
		return g, err
	})
}

func (r *PGRepository) UpdateGeneration(ctx context.Context, gen *Generation) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE generations SET name = $1, year_start = $2, year_end = $3 WHERE id = $4`,
		gen.Name, gen.YearStart, gen.YearEnd, gen.ID)
	if err != nil {
		return wrapRowErr("update generation", err)
	}
	return nil
}

func (r *PGRepository) DeleteGeneration(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1`, id)
	if err != nil {
		return wrapRowErr("delete generation", err)
	}
	return nil
}

// Specs

// SpecColumns is the spec projection over the aliased car_specs table. It is
// shared with the garage listing, which joins the same projection through the
// user's saved cars.
const SpecColumns = `s.id, s.generation_id, s.engine, s.horsepower, s.torque, s.fuel_type, s.year, COALESCE(s.created_by, 0)`

// ScanSpec scans one SpecColumns row.
func ScanSpec(rows pgx.Rows) (Spec, error) {
	var s Spec
	err := rows.Scan(&s.ID, &s.GenerationID, &s.Engine, &s.Horsepower, &s.Torque, &s.FuelType, &s.Year, &s.CreatedBy)
	return s, err
}

func (r *PGRepository) CreateSpec(ctx context.Context, spec *Spec) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO car_specs (generation_id, engine, horsepower, torque, fuel_type, year, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		spec.GenerationID, spec.Engine, spec.Horsepower, spec.Torque, spec.FuelType, spec.Year, spec.CreatedBy,
	).Scan(&spec.ID)
	if err != nil {
		return wrapRowErr("create spec", err)
	}
	return nil
}

func (r *PGRepository) SpecByID(ctx context.Context, id int64) (*Spec, error) {
	var s Spec
	err := r.pool.QueryRow(ctx,
		`SELECT `+SpecColumns+` FROM car_specs s WHERE s.id = $1`, id,
	).Scan(&s.ID, &s.GenerationID, &s.Engine, &s.Horsepower, &s.Torque, &s.FuelType, &s.Year, &s.CreatedBy)
	if err != nil {
		return nil, wrapRowErr("get spec", err)
	}
	return &s, nil
}

func (r *PGRepository) ListSpecs(ctx context.Context, generationID int64, p query.Params) (query.Page[Spec], error) {
	base := query.Base{
		SelectSQL: `SELECT ` + SpecColumns + ` FROM car_specs s`,
		CountSQL:  `SELECT COUNT(*) FROM car_specs s`,
		Where:     `s.generation_id = $1`,
		Args:      []any{generationID},
	}
	return query.Run(ctx, r.pool, base, SpecFields, p, ScanSpec)
}

func (r *PGRepository) UpdateSpec(ctx context.Context, spec *Spec) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE car_specs SET engine = $1, horsepower = $2, torque = $3, fuel_type = $4, year = $5
		 WHERE id = $6`,
		spec.Engine, spec.Horsepower, spec.Torque, spec.FuelType, spec.Year, spec.ID)
	if err != nil {
		return wrapRowErr("update spec", err)
	}
	return nil
}

func (r *PGRepository) DeleteSpec(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM car_specs WHERE id = $1`, id)
	if err != nil {
		return wrapRowErr("delete spec", err)
	}
	return nil
}
