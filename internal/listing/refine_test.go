package listing

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khidmat-portal/khidmat/internal/portal"
)

func ids(rs []portal.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID())
	}
	return out
}

func sampleUsers() []portal.Record {
	return []portal.Record{
		{"id": json.Number("1"), "name": "bilal", "zone_id": json.Number("3"), "is_zone_admin": true, "created_at": "2026-03-01T10:00:00Z", "message": map[string]any{"title_en": "Zuhr"}},
		{"id": json.Number("2"), "name": "Ali", "zone_id": json.Number("4"), "is_zone_admin": false, "created_at": "2025-12-31 23:00:00"},
		{"id": json.Number("3"), "name": "hamza", "zone_id": "3", "is_mehfil_admin": json.Number("1"), "created_at": "2026-01-15", "message": map[string]any{"title_en": "asr"}},
		{"id": json.Number("4"), "name": "Ali", "created_at": "2026-02-01T00:00:00Z", "message": map[string]any{"title_en": "Fajr"}},
	}
}

func TestRefiner_MissingFieldIsExcluded(t *testing.T) {
	got := Records.Filter(sampleUsers(), Records.Equals("zone_id", "3"))
	assert.Equal(t, []string{"1", "3"}, ids(got))

	got = Records.Filter(sampleUsers(), Records.Equals("no.such.field", ""))
	assert.Empty(t, got)
}

func TestRefiner_Predicates(t *testing.T) {
	users := sampleUsers()

	assert.Equal(t, []string{"1"}, ids(Records.Filter(users, Records.Truthy("is_zone_admin"))))
	assert.Equal(t, []string{"3"}, ids(Records.Filter(users, Records.Truthy("is_mehfil_admin"))))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Records.Filter(users, Records.In("zone_id", "3", "4"))))
	assert.Equal(t, []string{"1", "2", "4"}, ids(Records.Filter(users, Records.Contains("name", "AL"))))
	assert.Equal(t, []string{"1"}, ids(Records.Filter(users, Records.Equals("zone_id", "3"), Records.Truthy("is_zone_admin"))))
	assert.Len(t, Records.Filter(users), 4)
}

func TestRefiner_PanickingPredicateExcludes(t *testing.T) {
	boom := func(portal.Record) bool { panic("boom") }
	assert.Empty(t, Records.Filter(sampleUsers(), boom))

	exploding := Refiner[portal.Record]{Get: func(portal.Record, string) (any, bool) { panic("bad getter") }}
	assert.Empty(t, exploding.Filter(sampleUsers(), exploding.Equals("name", "Ali")))
	assert.Len(t, exploding.Sort(sampleUsers(), "name", Asc), 4)
}

func TestRefiner_SortStringsCaseFolded(t *testing.T) {
	got := Records.Sort(sampleUsers(), "name", Asc)
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(got))

	got = Records.Sort(sampleUsers(), "name", Desc)
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(got))
}

func TestRefiner_SortIsStableAndIdempotent(t *testing.T) {
	once := Records.Sort(sampleUsers(), "name", Asc)
	twice := Records.Sort(once, "name", Asc)
	assert.Equal(t, ids(once), ids(twice))
}

func TestRefiner_SortTimestamps(t *testing.T) {
	got := Records.Sort(sampleUsers(), "created_at", Asc)
	assert.Equal(t, []string{"2", "3", "4", "1"}, ids(got))
}

func TestRefiner_SortNestedMissingLowest(t *testing.T) {
	got := Records.Sort(sampleUsers(), "message.title_en", Asc)
	assert.Equal(t, []string{"2", "3", "4", "1"}, ids(got))

	got = Records.Sort(sampleUsers(), "message.title_en", Desc)
	assert.Equal(t, []string{"1", "4", "3", "2"}, ids(got))
}

func TestRefiner_SortNumbersAndBools(t *testing.T) {
	items := []portal.Record{
		{"id": json.Number("10"), "flag": true},
		{"id": json.Number("9"), "flag": false},
		{"id": "100"},
	}
	assert.Equal(t, []string{"9", "10", "100"}, ids(Records.Sort(items, "id", Asc)))
	assert.Equal(t, []string{"100", "9", "10"}, ids(Records.Sort(items, "flag", Asc)))
}

func TestRefiner_SortMixedKindsIsConsistent(t *testing.T) {
	orders := [][]portal.Record{
		{{"id": "a", "v": json.Number("10")}, {"id": "b", "v": "1a"}, {"id": "c", "v": json.Number("9")}},
		{{"id": "b", "v": "1a"}, {"id": "c", "v": json.Number("9")}, {"id": "a", "v": json.Number("10")}},
		{{"id": "c", "v": json.Number("9")}, {"id": "a", "v": json.Number("10")}, {"id": "b", "v": "1a"}},
	}
	for _, items := range orders {
		assert.Equal(t, []string{"c", "a", "b"}, ids(Records.Sort(items, "v", Asc)))
		assert.Equal(t, []string{"b", "a", "c"}, ids(Records.Sort(items, "v", Desc)))
	}

	mixed := []portal.Record{
		{"id": "text", "v": "zuhr"},
		{"id": "stamp", "v": "2026-03-01"},
		{"id": "flag", "v": true},
		{"id": "num", "v": json.Number("3")},
		{"id": "none"},
	}
	assert.Equal(t, []string{"none", "num", "flag", "stamp", "text"}, ids(Records.Sort(mixed, "v", Asc)))
}

func TestRefiner_SortDoesNotMutateInput(t *testing.T) {
	users := sampleUsers()
	Records.Sort(users, "name", Desc)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(users))
}

func TestRefine_RepaginatesFromFilteredLength(t *testing.T) {
	items := make([]portal.Record, 0, 30)
	for i := 1; i <= 30; i++ {
		zone := "1"
		if i%3 == 0 {
			zone = "2"
		}
		items = append(items, portal.Record{"id": json.Number(strconv.Itoa(i)), "zone_id": zone})
	}
	ref := Refinement[portal.Record]{Predicates: []Predicate[portal.Record]{Records.Equals("zone_id", "2")}}

	got := Records.Refine(items, ref, 2, 4, 50)
	require.True(t, got.Degraded)
	assert.Equal(t, 10, got.Filtered)
	assert.Equal(t, 3, got.TotalPages)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, []string{"15", "18", "21", "24"}, ids(got.Items))
	assert.Equal(t, 50, got.ServerTotal)
	assert.True(t, got.Truncated)
	assert.LessOrEqual(t, len(got.Items), got.Filtered)

	last := Records.Refine(items, ref, 99, 4, 30)
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, []string{"27", "30"}, ids(last.Items))
	assert.False(t, last.Truncated)
}

func TestRefine_EmptyAfterFiltering(t *testing.T) {
	ref := Refinement[portal.Record]{Predicates: []Predicate[portal.Record]{Records.Equals("zone_id", "99")}}
	got := Records.Refine(sampleUsers(), ref, 3, 10, 4)
	assert.Empty(t, got.Items)
	assert.Equal(t, 0, got.TotalPages)
	assert.Equal(t, 1, got.Page)
}

func TestRefine_InactiveIsNotDegraded(t *testing.T) {
	got := Records.Refine(sampleUsers(), Refinement[portal.Record]{}, 1, 10, 4)
	assert.False(t, got.Degraded)
	assert.Len(t, got.Items, 4)
}
