package query

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhive/carhive/internal/platform/httpx"
)

func TestParamsFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/specs?page=2&per_page=5&sort_by=-year&filters=year%3E2010", nil)
	p := ParamsFromRequest(r)
	assert.Equal(t, Params{Page: 2, PerPage: 5, SortBy: "-year", Filters: "year>2010"}, p)

	r = httptest.NewRequest("GET", "/specs", nil)
	p = ParamsFromRequest(r)
	assert.Equal(t, Params{Page: 1, PerPage: 10}, p)

	// Garbage numbers fail validation instead of silently defaulting.
	r = httptest.NewRequest("GET", "/specs?page=abc", nil)
	require.Error(t, ParamsFromRequest(r).Validate())
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, Params{Page: 1, PerPage: 1}.Validate())

	assert.NoError(t, Params{Page: 1, PerPage: MaxPerPage}.Validate())

	for _, p := range []Params{
		{Page: 0, PerPage: 10},
		{Page: -1, PerPage: 10},
		{Page: 1, PerPage: 0},
		{Page: 1, PerPage: -5},
		{Page: 1, PerPage: MaxPerPage + 1},
		{Page: 1, PerPage: 1_000_000_000},
	} {
		err := p.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrValidation)
	}
}

func TestNewMeta(t *testing.T) {
	cases := []struct {
		total, perPage, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 2, 3},
	}
	for _, tc := range cases {
		meta := NewMeta(1, tc.perPage, tc.total)
		assert.Equal(t, tc.pages, meta.TotalPages, "total=%d per_page=%d", tc.total, tc.perPage)
	}
}

func TestBuildUnscoped(t *testing.T) {
	base := Base{
		SelectSQL: "SELECT id, name, created_by FROM brands",
		CountSQL:  "SELECT COUNT(*) FROM brands",
	}
	fields := FieldSet{"name": {Column: "name", Kind: KindString}}

	compiled, err := Build(base, fields, Params{Page: 2, PerPage: 10, SortBy: "-name", Filters: "name~=audi"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM brands WHERE name ILIKE $1", compiled.CountSQL)
	assert.Equal(t,
		"SELECT id, name, created_by FROM brands WHERE name ILIKE $1 ORDER BY name DESC LIMIT $2 OFFSET $3",
		compiled.SelectSQL)
	assert.Equal(t, []any{"%audi%"}, compiled.Args)
	assert.Equal(t, []any{"%audi%", 10, 10}, compiled.SelectArgs)
}

func TestBuildScopedToParent(t *testing.T) {
	base := Base{
		SelectSQL: "SELECT id, brand_id, name, created_by FROM models",
		CountSQL:  "SELECT COUNT(*) FROM models",
		Where:     "brand_id = $1",
		Args:      []any{int64(7)},
	}
	fields := FieldSet{"name": {Column: "name", Kind: KindString}}

	compiled, err := Build(base, fields, Params{Page: 1, PerPage: 20, Filters: "name:Golf"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM models WHERE brand_id = $1 AND name = $2", compiled.CountSQL)
	assert.Equal(t,
		"SELECT id, brand_id, name, created_by FROM models WHERE brand_id = $1 AND name = $2 LIMIT $3 OFFSET $4",
		compiled.SelectSQL)
	assert.Equal(t, []any{int64(7), "Golf", 20, 0}, compiled.SelectArgs)
}

func TestBuildUnknownFiltersAreNoOp(t *testing.T) {
	base := Base{
		SelectSQL: "SELECT id, name, created_by FROM brands",
		CountSQL:  "SELECT COUNT(*) FROM brands",
	}
	fields := FieldSet{"name": {Column: "name", Kind: KindString}}

	compiled, err := Build(base, fields, Params{Page: 1, PerPage: 10, Filters: "bogus:1,also~=nope"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM brands", compiled.CountSQL)
	assert.Equal(t, "SELECT id, name, created_by FROM brands LIMIT $1 OFFSET $2", compiled.SelectSQL)
	assert.Empty(t, compiled.Args)
}

func TestBuildRejectsBadPaging(t *testing.T) {
	base := Base{SelectSQL: "SELECT 1", CountSQL: "SELECT COUNT(*)"}

	_, err := Build(base, nil, Params{Page: 0, PerPage: 10})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = Build(base, nil, Params{Page: 1, PerPage: 0})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	// An oversized window never reaches SQL or allocation.
	_, err = Build(base, nil, Params{Page: 1, PerPage: MaxPerPage + 1})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
