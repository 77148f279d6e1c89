package listing

import (
	"maps"
	"sort"
	"strings"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ParseDirection accepts "asc"/"desc" in any case; anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Query is the complete description of one list request. It is a value:
// every With* method returns a copy. Changing anything other than Page
// resets Page to 1.
type Query struct {
	Page          int
	PageSize      int
	Search        string
	SortField     string
	SortDirection Direction
	Filters       map[string]string
}

// NewQuery returns the first page with the given size and sort.
func NewQuery(pageSize int, sortField string) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{Page: 1, PageSize: pageSize, SortField: sortField, SortDirection: Asc}
}

// WithPage moves to page n without touching anything else.
func (q Query) WithPage(n int) Query {
	if n < 1 {
		n = 1
	}
	q.Page = n
	return q
}

// WithPageSize changes the page size and resets to page 1.
func (q Query) WithPageSize(n int) Query {
	if n <= 0 || n == q.PageSize {
		return q
	}
	q.PageSize = n
	q.Page = 1
	return q
}

// WithSearch changes the search text and resets to page 1.
func (q Query) WithSearch(s string) Query {
	s = strings.TrimSpace(s)
	if s == q.Search {
		return q
	}
	q.Search = s
	q.Page = 1
	return q
}

// WithSort changes the sort and resets to page 1.
func (q Query) WithSort(field string, dir Direction) Query {
	if dir != Desc {
		dir = Asc
	}
	if field == q.SortField && dir == q.SortDirection {
		return q
	}
	q.SortField = field
	q.SortDirection = dir
	q.Page = 1
	return q
}

// WithFilter sets one filter; an empty value removes it. Resets to page 1.
func (q Query) WithFilter(key, value string) Query {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || q.Filter(key) == value {
		return q
	}
	filters := maps.Clone(q.Filters)
	if filters == nil {
		filters = make(map[string]string)
	}
	if value == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	q.Filters = filters
	q.Page = 1
	return q
}

// WithoutFilters clears every filter. Resets to page 1 when any were set.
func (q Query) WithoutFilters() Query {
	if len(q.Filters) == 0 {
		return q
	}
	q.Filters = nil
	q.Page = 1
	return q
}

// Filter returns the value of one filter or "".
func (q Query) Filter(key string) string {
	return q.Filters[key]
}

// FilterKeys returns active filter keys sorted.
func (q Query) FilterKeys() []string {
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal compares two queries field by field.
func (q Query) Equal(o Query) bool {
	return q.Page == o.Page &&
		q.PageSize == o.PageSize &&
		q.Search == o.Search &&
		q.SortField == o.SortField &&
		q.SortDirection == o.SortDirection &&
		maps.Equal(q.Filters, o.Filters)
}
