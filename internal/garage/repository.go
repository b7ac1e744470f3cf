package garage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/catalog"
	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
)

// PGRepository is the PostgreSQL-backed garage repository over the user_cars
// join table.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListCars(ctx context.Context, userID int64, p query.Params) (query.Page[catalog.Spec], error) {
	base := query.Base{
		SelectSQL: `SELECT ` + catalog.SpecColumns + ` FROM car_specs s JOIN user_cars uc ON uc.car_spec_id = s.id`,
		CountSQL:  `SELECT COUNT(*) FROM car_specs s JOIN user_cars uc ON uc.car_spec_id = s.id`,
		Where:     `uc.user_id = $1`,
		Args:      []any{userID},
	}
	return query.Run(ctx, r.pool, base, catalog.SpecFields, p, catalog.ScanSpec)
}

func (r *PGRepository) AddCar(ctx context.Context, userID, specID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_cars (user_id, car_spec_id) VALUES ($1, $2)`,
		userID, specID)
	switch {
	case err == nil:
		return nil
	case httpx.IsUniqueViolation(err):
		return httpx.ErrDuplicate
	case httpx.IsForeignKeyViolation(err):
		return httpx.ErrNotFound
	default:
		return fmt.Errorf("garage: add car: %w", err)
	}
}

func (r *PGRepository) RemoveCar(ctx context.Context, userID, specID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_cars WHERE user_id = $1 AND car_spec_id = $2`,
		userID, specID)
	if err != nil {
		return fmt.Errorf("garage: remove car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
