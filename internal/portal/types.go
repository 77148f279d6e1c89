package portal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const portalDateLayout = "2006-01-02 15:04:05"

// Record is a single row of any portal collection as decoded from JSON.
// Numbers are kept as json.Number so ids and counts survive untouched.
type Record map[string]any

// Lookup resolves a dotted field path such as "message.title_en" through
// nested objects. Missing segments and non-object parents report false.
func (r Record) Lookup(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		next, ok := obj[part]
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// String returns the value at path formatted for display, or "" when the
// field is missing.
func (r Record) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// ID returns the record identifier as a string.
func (r Record) ID() string {
	return r.String("id")
}

// FormatValue renders a decoded JSON value as plain text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if obj, ok := asObject(item); ok {
				if name, ok := obj["name"]; ok {
					parts = append(parts, FormatValue(name))
					continue
				}
			}
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		if obj, ok := asObject(val); ok {
			for _, key := range []string{"name", "title", "title_en", "id"} {
				if inner, ok := obj[key]; ok {
					return FormatValue(inner)
				}
			}
		}
		return fmt.Sprint(val)
	}
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Record:
		return obj, true
	default:
		return nil, false
	}
}

// Meta mirrors the pagination envelope returned by list endpoints.
type Meta struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// ListResponse mirrors GET /{entity}.
type ListResponse struct {
	Data []Record `json:"data"`
	Meta Meta     `json:"meta"`
}

// ListParams configures a collection read.
type ListParams struct {
	Page      int
	Size      int
	Search    string
	Sort      string
	Direction string
	Filters   map[string]string
}

// Me mirrors GET /auth/me.
type Me struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	IsSuperAdmin  bool        `json:"is_super_admin"`
	IsZoneAdmin   bool        `json:"is_zone_admin"`
	IsMehfilAdmin bool        `json:"is_mehfil_admin"`
	IsRegionAdmin bool        `json:"is_region_admin"`
	ZoneID        json.Number `json:"zone_id"`
	MehfilID      json.Number `json:"mehfil_id"`
	RegionID      json.Number `json:"region_id"`
	Role          *MeRole     `json:"role"`
	Permissions   []string    `json:"permissions"`
}

// MeRole is the role object nested in /auth/me.
type MeRole struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Permission is a named grant attached to a role.
type Permission struct {
	Name string `json:"name"`
}

// PermissionNames flattens role and direct permissions into one list.
func (m Me) PermissionNames() []string {
	names := make([]string, 0, len(m.Permissions))
	names = append(names, m.Permissions...)
	if m.Role != nil {
		for _, p := range m.Role.Permissions {
			names = append(names, p.Name)
		}
	}
	return names
}

// RoleName returns the role name or "" when the user has no role.
func (m Me) RoleName() string {
	if m.Role == nil {
		return ""
	}
	return m.Role.Name
}

// ParseTime parses the timestamp formats the portal emits. The zero time is
// returned when nothing matches.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range []string{portalDateLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
