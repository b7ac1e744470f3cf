package catalog

import "github.com/carhive/carhive/internal/query"

// Attribute registries for dynamic filtering and sorting. Anything not listed
// here is silently ignored by the compilers.

var brandFields = query.FieldSet{
	"id":         {Column: "id", Kind: query.KindInt},
	"name":       {Column: "name", Kind: query.KindString},
	"created_by": {Column: "created_by", Kind: query.KindInt},
}

var modelFields = query.FieldSet{
	"id":         {Column: "id", Kind: query.KindInt},
	"brand_id":   {Column: "brand_id", Kind: query.KindInt},
	"name":       {Column: "name", Kind: query.KindString},
	"created_by": {Column: "created_by", Kind: query.KindInt},
}

var submodelFields = query.FieldSet{
	"id":         {Column: "id", Kind: query.KindInt},
	"model_id":   {Column: "model_id", Kind: query.KindInt},
	"name":       {Column: "name", Kind: query.KindString},
	"created_by": {Column: "created_by", Kind: query.KindInt},
}

var generationFields = query.FieldSet{
	"id":          {Column: "id", Kind: query.KindInt},
	"submodel_id": {Column: "submodel_id", Kind: query.KindInt},
	"name":        {Column: "name", Kind: query.KindString},
	"year_start":  {Column: "year_start", Kind: query.KindInt},
	"year_end":    {Column: "year_end", Kind: query.KindInt},
	"created_by":  {Column: "created_by", Kind: query.KindInt},
}

// SpecFields is shared with the garage listing, which pages over specs joined
// through the user's saved cars.
var SpecFields = query.FieldSet{
	"id":            {Column: "s.id", Kind: query.KindInt},
	"generation_id": {Column: "s.generation_id", Kind: query.KindInt},
	"engine":        {Column: "s.engine", Kind: query.KindString},
	"horsepower":    {Column: "s.horsepower", Kind: query.KindInt},
	"torque":        {Column: "s.torque", Kind: query.KindInt},
	"fuel_type":     {Column: "s.fuel_type", Kind: query.KindString},
	"year":          {Column: "s.year", Kind: query.KindInt},
	"created_by":    {Column: "s.created_by", Kind: query.KindInt},
}
