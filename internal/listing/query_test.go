package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_NonPageChangesResetPage(t *testing.T) {
	base := NewQuery(10, "id").WithPage(5)
	require.Equal(t, 5, base.Page)

	tests := []struct {
		name string
		q    Query
	}{
		{"search", base.WithSearch("ali")},
		{"filter", base.WithFilter("zone_id", "3")},
		{"sort field", base.WithSort("name", Asc)},
		{"sort direction", base.WithSort("id", Desc)},
		{"page size", base.WithPageSize(25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1, tt.q.Page)
		})
	}
}

func TestQuery_UnchangedValuesKeepPage(t *testing.T) {
	q := NewQuery(10, "id").WithSearch("ali").WithPage(4)

	assert.Equal(t, 4, q.WithSearch(" ali ").Page)
	assert.Equal(t, 4, q.WithSort("id", Asc).Page)
	assert.Equal(t, 4, q.WithPageSize(10).Page)
	assert.Equal(t, 4, q.WithPageSize(0).Page)
	assert.Equal(t, 4, q.WithFilter("zone_id", "").Page)
	assert.Equal(t, 4, q.WithoutFilters().Page)
}

func TestQuery_FiltersAreCopiedOnWrite(t *testing.T) {
	a := NewQuery(10, "").WithFilter("zone_id", "3")
	b := a.WithFilter("mehfil_id", "7")
	c := b.WithFilter("zone_id", "")

	assert.Equal(t, []string{"zone_id"}, a.FilterKeys())
	assert.Equal(t, []string{"mehfil_id", "zone_id"}, b.FilterKeys())
	assert.Equal(t, []string{"mehfil_id"}, c.FilterKeys())
	assert.Equal(t, "7", c.Filter("mehfil_id"))
	assert.Empty(t, c.Filter("zone_id"))
}

func TestQuery_Equal(t *testing.T) {
	a := NewQuery(10, "id").WithFilter("k", "v")
	b := NewQuery(10, "id").WithFilter("k", "v")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.WithPage(2)))
	assert.False(t, a.Equal(b.WithFilter("k", "w")))
	assert.True(t, NewQuery(10, "").Equal(NewQuery(10, "").WithoutFilters()))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection(" DESC "))
	assert.Equal(t, Asc, ParseDirection("sideways"))
	assert.Equal(t, Asc, Desc.Flip())
	assert.Equal(t, Desc, Asc.Flip())
	assert.Equal(t, Asc, NewQuery(0, "x").WithSort("y", "bogus").SortDirection)
	assert.Equal(t, DefaultPageSize, NewQuery(0, "").PageSize)
}
