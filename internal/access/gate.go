package access

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrPermissionDenied is returned by Guard when an action is not allowed.
var ErrPermissionDenied = errors.New("permission denied")

// Action is one of the four operations gated per entity.
type Action int

const (
	ActionView Action = iota
	ActionCreate
	ActionEdit
	ActionDelete
)

// Actions lists every gated action in display order.
var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionCreate:
		return "create"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Verb is the permission-name prefix for the action (VIEW, CREATE, ...).
func (a Action) Verb() string {
	return strings.ToUpper(a.String())
}

// ScopeOverride grants an action based on administrative scope alone.
type ScopeOverride func(ScopeFlags) bool

// ZoneAdmin is a ScopeOverride for zone administrators.
func ZoneAdmin(s ScopeFlags) bool { return s.ZoneAdmin }

// MehfilAdmin is a ScopeOverride for mehfil administrators.
func MehfilAdmin(s ScopeFlags) bool { return s.MehfilAdmin }

// RegionAdmin is a ScopeOverride for region administrators.
func RegionAdmin(s ScopeFlags) bool { return s.RegionAdmin }

// IsAllowed is the single predicate behind every permission decision.
func IsAllowed(cs CapabilitySet, permission string, override ScopeOverride) bool {
	if cs.IsSuperAdmin {
		return true
	}
	if permission != "" && cs.Has(permission) {
		return true
	}
	return override != nil && override(cs.Scope)
}

// Rule names the permission and optional scope override for one action.
type Rule struct {
	Permission string
	Override   ScopeOverride
}

// Availability is the per-entity action matrix used to draw controls.
type Availability struct {
	CanView   bool
	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// Can reports the flag for a single action.
func (a Availability) Can(action Action) bool {
	switch action {
	case ActionView:
		return a.CanView
	case ActionCreate:
		return a.CanCreate
	case ActionEdit:
		return a.CanEdit
	case ActionDelete:
		return a.CanDelete
	default:
		return false
	}
}

// Policy is the declarative (entity, action) -> Rule table.
type Policy struct {
	mu    sync.RWMutex
	rules map[string]map[Action]Rule
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{rules: make(map[string]map[Action]Rule)}
}

// Set registers the rule for an entity action, replacing any previous one.
func (p *Policy) Set(entity string, action Action, rule Rule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	byAction, ok := p.rules[entity]
	if !ok {
		byAction = make(map[Action]Rule, len(Actions))
		p.rules[entity] = byAction
	}
	rule.Permission = normalizePermission(rule.Permission)
	byAction[action] = rule
}

// Rule looks up the rule for an entity action.
func (p *Policy) Rule(entity string, action Action) (Rule, bool) {
	if p == nil {
		return Rule{}, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	rule, ok := p.rules[entity][action]
	return rule, ok
}

// Allowed evaluates the rule for an entity action. Unknown rules allow super
// admins only.
func (p *Policy) Allowed(cs CapabilitySet, entity string, action Action) bool {
	rule, ok := p.Rule(entity, action)
	if !ok {
		return cs.IsSuperAdmin
	}
	return IsAllowed(cs, rule.Permission, rule.Override)
}

// Availability computes the four action flags for an entity.
func (p *Policy) Availability(cs CapabilitySet, entity string) Availability {
	return Availability{
		CanView:   p.Allowed(cs, entity, ActionView),
		CanCreate: p.Allowed(cs, entity, ActionCreate),
		CanEdit:   p.Allowed(cs, entity, ActionEdit),
		CanDelete: p.Allowed(cs, entity, ActionDelete),
	}
}

// Guard returns an error wrapping ErrPermissionDenied when the action is not
// allowed.
func (p *Policy) Guard(cs CapabilitySet, entity string, action Action) error {
	if p.Allowed(cs, entity, action) {
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrPermissionDenied, action, entity)
}

// Gate evaluates the policy against the provider's current capabilities on
// every call, so a refreshed session takes effect immediately.
type Gate struct {
	Policy   *Policy
	Provider *Provider
}

// Availability computes the action flags for the current session.
func (g Gate) Availability(entity string) Availability {
	return g.Policy.Availability(g.Provider.Current(), entity)
}

// Allowed reports whether the current session may perform the action.
func (g Gate) Allowed(entity string, action Action) bool {
	return g.Policy.Allowed(g.Provider.Current(), entity, action)
}

// Guard checks the current session before an action handler runs.
func (g Gate) Guard(entity string, action Action) error {
	return g.Policy.Guard(g.Provider.Current(), entity, action)
}
