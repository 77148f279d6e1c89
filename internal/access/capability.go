package access

import (
	"sort"
	"strings"

	"github.com/khidmat-portal/khidmat/internal/portal"
)

// ScopeFlags carries the administrative scope of the signed-in user.
type ScopeFlags struct {
	ZoneAdmin   bool
	MehfilAdmin bool
	RegionAdmin bool
	ZoneID      string
	MehfilID    string
	RegionID    string
}

// CapabilitySet is the resolved identity used for every permission check.
// It is immutable once built; refreshes replace it wholesale.
type CapabilitySet struct {
	User         string
	Role         string
	IsSuperAdmin bool
	Scope        ScopeFlags

	perms map[string]struct{}
}

// NewCapabilitySet builds a set from raw permission names. Names are
// normalized to upper case and blanks are dropped.
func NewCapabilitySet(user, role string, superAdmin bool, permissions []string, scope ScopeFlags) CapabilitySet {
	perms := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		if p = normalizePermission(p); p != "" {
			perms[p] = struct{}{}
		}
	}
	return CapabilitySet{
		User:         strings.TrimSpace(user),
		Role:         strings.TrimSpace(role),
		IsSuperAdmin: superAdmin,
		Scope:        scope,
		perms:        perms,
	}
}

// FromMe converts the /auth/me payload.
func FromMe(me portal.Me) CapabilitySet {
	user := me.Name
	if user == "" {
		user = me.Email
	}
	return NewCapabilitySet(user, me.RoleName(), me.IsSuperAdmin, me.PermissionNames(), ScopeFlags{
		ZoneAdmin:   me.IsZoneAdmin,
		MehfilAdmin: me.IsMehfilAdmin,
		RegionAdmin: me.IsRegionAdmin,
		ZoneID:      me.ZoneID.String(),
		MehfilID:    me.MehfilID.String(),
		RegionID:    me.RegionID.String(),
	})
}

// Has reports whether the permission was granted directly or through the role.
func (c CapabilitySet) Has(permission string) bool {
	if len(c.perms) == 0 {
		return false
	}
	_, ok := c.perms[normalizePermission(permission)]
	return ok
}

// Permissions returns the granted names sorted.
func (c CapabilitySet) Permissions() []string {
	out := make([]string, 0, len(c.perms))
	for p := range c.perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsZero reports whether nothing has been resolved yet.
func (c CapabilitySet) IsZero() bool {
	return c.User == "" && c.Role == "" && !c.IsSuperAdmin && len(c.perms) == 0 && c.Scope == ScopeFlags{}
}

func normalizePermission(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}
