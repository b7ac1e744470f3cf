// Package catalog exposes the brand → model → submodel → generation → spec
// hierarchy as CRUD operations gated by the permission system.
package catalog

// Brand is the top-level catalog entity. Name is globally unique.
type Brand struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedBy int64  `json:"created_by"`
}

// Model belongs to a brand.
type Model struct {
	ID        int64  `json:"id"`
	BrandID   int64  `json:"brand_id"`
	Name      string `json:"name"`
	CreatedBy int64  `json:"created_by"`
}

// Submodel belongs to a model.
type Submodel struct {
	ID        int64  `json:"id"`
	ModelID   int64  `json:"model_id"`
	Name      string `json:"name"`
	CreatedBy int64  `json:"created_by"`
}

// Generation belongs to a submodel and spans an optional production window.
type Generation struct {
	ID         int64  `json:"id"`
	SubmodelID int64  `json:"submodel_id"`
	Name       string `json:"name"`
	YearStart  *int   `json:"year_start"`
	YearEnd    *int   `json:"year_end"`
	CreatedBy  int64  `json:"created_by"`
}

// Spec is a concrete specification within a generation.
type Spec struct {
	ID           int64   `json:"id"`
	GenerationID int64   `json:"generation_id"`
	Engine       *string `json:"engine"`
	Horsepower   *int    `json:"horsepower"`
	Torque       *int    `json:"torque"`
	FuelType     *string `json:"fuel_type"`
	Year         *int    `json:"year"`
	CreatedBy    int64   `json:"created_by"`
}
