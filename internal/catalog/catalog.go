package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/khidmat-portal/khidmat/internal/access"
)

// Column is one table column bound to a dotted record field.
type Column struct {
	Title string
	Field string
	Width int // preferred width in cells; zero lets the table decide
}

// FilterMode selects how a client-side filter matches a record.
type FilterMode int

const (
	// MatchEquals keeps records whose Field equals the chosen value.
	MatchEquals FilterMode = iota
	// MatchFlag treats the chosen value as a field name that must be truthy.
	MatchFlag
)

// Option is one selectable value of a filter.
type Option struct {
	Label string
	Value string
}

// Filter describes one filter dimension. Server filters are sent as query
// parameters; client filters run in memory because the backend ignores them.
type Filter struct {
	Key     string
	Label   string
	Field   string
	Client  bool
	Mode    FilterMode
	Options []Option
}

// Entity describes one portal collection.
type Entity struct {
	Name  string // stable key used on the command line
	Title string
	Path  string
	Noun  string // singular, lower case, for messages

	// PermissionKey is the suffix of VIEW_/CREATE_/EDIT_/DELETE_ names.
	PermissionKey string
	Overrides     map[access.Action]access.ScopeOverride

	Columns     []Column
	DefaultSort string
	// ServerSort lists the fields the backend can order by. Sorting by any
	// other field is done in memory.
	ServerSort []string
	Filters    []Filter
}

// Permission returns the permission name required for an action.
func (e Entity) Permission(action access.Action) string {
	return action.Verb() + "_" + e.PermissionKey
}

// Filter finds a filter by key.
func (e Entity) Filter(key string) (Filter, bool) {
	for _, f := range e.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

// SortsOnServer reports whether the backend can order by field.
func (e Entity) SortsOnServer(field string) bool {
	return field == "" || slices.Contains(e.ServerSort, field)
}

// SortFields lists every column field usable as a sort key.
func (e Entity) SortFields() []string {
	out := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		out = append(out, c.Field)
	}
	return out
}

var registry = func() map[string]Entity {
	m := make(map[string]Entity, len(entities))
	for _, e := range entities {
		m[e.Name] = e
	}
	return m
}()

// All returns every entity in menu order.
func All() []Entity {
	return slices.Clone(entities)
}

// Names returns entity keys in menu order.
func Names() []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

// Lookup finds an entity by name, path or title, ignoring case.
func Lookup(name string) (Entity, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if e, ok := registry[key]; ok {
		return e, nil
	}
	for _, e := range entities {
		if strings.EqualFold(e.Path, key) || strings.EqualFold(e.Title, key) {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("unknown entity %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Policy builds the permission table for every entity.
func Policy() *access.Policy {
	p := access.NewPolicy()
	for _, e := range entities {
		for _, action := range access.Actions {
			p.Set(e.Name, action, access.Rule{
				Permission: e.Permission(action),
				Override:   e.Overrides[action],
			})
		}
	}
	return p
}
