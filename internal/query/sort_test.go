package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSort(t *testing.T) {
	fields := FieldSet{
		"name": {Column: "name", Kind: KindString},
		"year": {Column: "year", Kind: KindInt},
	}

	keys := CompileSort(fields, "-year,name")
	require.Len(t, keys, 2)
	assert.Equal(t, SortKey{Column: "year", Desc: true}, keys[0])
	assert.Equal(t, SortKey{Column: "name", Desc: false}, keys[1])
}

func TestCompileSortSkipsUnknownAndEmpty(t *testing.T) {
	fields := FieldSet{"name": {Column: "name"}}

	assert.Empty(t, CompileSort(fields, ""))
	assert.Empty(t, CompileSort(fields, "-horsepower, ,"))

	keys := CompileSort(fields, " name , -missing")
	require.Len(t, keys, 1)
	assert.Equal(t, "name", keys[0].Column)
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "", OrderBy(nil))
	assert.Equal(t, "year DESC, name ASC", OrderBy([]SortKey{
		{Column: "year", Desc: true},
		{Column: "name"},
	}))
}
