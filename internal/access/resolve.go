package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/khidmat-portal/khidmat/internal/portal"
)

// MeFetcher is the slice of the portal client Resolve needs.
type MeFetcher interface {
	Me(ctx context.Context) (portal.Me, error)
}

// Resolve builds the CapabilitySet from /auth/me. When the endpoint cannot be
// reached it falls back to the unverified claims of the bearer token. A
// rejected token (401/403) is never papered over with its own claims.
func Resolve(ctx context.Context, api MeFetcher, token string) (CapabilitySet, Source, error) {
	me, err := api.Me(ctx)
	if err == nil {
		return FromMe(me), SourceAPI, nil
	}
	if portal.IsForbidden(err) || errors.Is(err, context.Canceled) {
		return CapabilitySet{}, SourceNone, fmt.Errorf("resolve session: %w", err)
	}

	cs, tokenErr := FromToken(token)
	if tokenErr != nil {
		return CapabilitySet{}, SourceNone, fmt.Errorf("resolve session: %w", errors.Join(err, tokenErr))
	}
	return cs, SourceToken, nil
}

// FromToken reads capability claims from a JWT without verifying its
// signature; the backend still authorizes every request.
func FromToken(token string) (CapabilitySet, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return CapabilitySet{}, errors.New("no token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return CapabilitySet{}, fmt.Errorf("parse token claims: %w", err)
	}

	user := claimString(claims, "name")
	if user == "" {
		user = claimString(claims, "email")
	}
	if user == "" {
		user, _ = claims.GetSubject()
	}

	role, rolePerms := claimRole(claims["role"])
	perms := append(claimNames(claims["permissions"]), rolePerms...)

	return NewCapabilitySet(user, role, claimBool(claims, "is_super_admin"), perms, ScopeFlags{
		ZoneAdmin:   claimBool(claims, "is_zone_admin"),
		MehfilAdmin: claimBool(claims, "is_mehfil_admin"),
		RegionAdmin: claimBool(claims, "is_region_admin"),
		ZoneID:      claimString(claims, "zone_id"),
		MehfilID:    claimString(claims, "mehfil_id"),
		RegionID:    claimString(claims, "region_id"),
	}), nil
}

func claimBool(claims jwt.MapClaims, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case json.Number:
		n, err := v.Int64()
		return err == nil && n != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return portal.FormatValue(v)
	}
}

// claimRole accepts "role": "Admin" or "role": {"name": ..., "permissions": [...]}.
func claimRole(raw any) (string, []string) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case map[string]any:
		name, _ := v["name"].(string)
		return strings.TrimSpace(name), claimNames(v["permissions"])
	default:
		return "", nil
	}
}

// claimNames accepts a list of strings or of {"name": ...} objects.
func claimNames(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if name, ok := v["name"].(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}
