// Package guard provides the built-in access guards.
//
// Role and Permission read claims from the stored access token without
// verifying its signature: they gate client-side navigation, not server
// access. A token that cannot be decoded has no claims.
package guard

import (
	"context"
	"encoding/json"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/authz"
)

// Claim names read from the access token.
const (
	ClaimRoles       = "roles"
	ClaimPermissions = "permissions"
)

// Option configures claim-based guards.
type Option func(*options)

type options struct {
	matcher authz.Matcher
}

// WithWildcards treats granted claims as "resource:action" patterns, so a
// granted "article:*" satisfies a required "article:read".
func WithWildcards() Option {
	return func(o *options) { o.matcher = authz.Wildcard }
}

func buildOptions(opts []Option) options {
	o := options{matcher: authz.Exact}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AuthenticatedGuard allows any session the client considers authenticated.
type AuthenticatedGuard struct{}

// Authenticated returns a guard delegating to Session.IsAuthenticated.
func Authenticated() *AuthenticatedGuard { return &AuthenticatedGuard{} }

func (*AuthenticatedGuard) Name() string { return "authenticated" }

func (*AuthenticatedGuard) CanActivate(ctx context.Context, s auth.Session) (bool, error) {
	return s.IsAuthenticated(ctx)
}

// RoleGuard allows sessions holding at least one of its roles.
type RoleGuard struct {
	Roles []string
	opts  options
}

// Role returns a guard requiring any of roles.
func Role(roles []string, opts ...Option) *RoleGuard {
	return &RoleGuard{Roles: roles, opts: buildOptions(opts)}
}

func (*RoleGuard) Name() string { return "role" }

func (g *RoleGuard) CanActivate(ctx context.Context, s auth.Session) (bool, error) {
	granted, ok, err := tokenClaim(ctx, s, ClaimRoles)
	if err != nil || !ok {
		return false, err
	}
	return authz.HasAny(g.opts.matcher, granted, g.Roles), nil
}

// PermissionGuard allows sessions holding every one of its permissions.
type PermissionGuard struct {
	Permissions []string
	opts        options
}

// Permission returns a guard requiring all of perms. An empty requirement
// allows any session with a token.
func Permission(perms []string, opts ...Option) *PermissionGuard {
	return &PermissionGuard{Permissions: perms, opts: buildOptions(opts)}
}

func (*PermissionGuard) Name() string { return "permission" }

func (g *PermissionGuard) CanActivate(ctx context.Context, s auth.Session) (bool, error) {
	granted, ok, err := tokenClaim(ctx, s, ClaimPermissions)
	if err != nil || !ok {
		return false, err
	}
	return authz.HasAll(g.opts.matcher, granted, g.Permissions), nil
}

// tokenClaim reads the session's access token and returns the string list
// under claim. ok is false when no token is stored; storage errors are
// returned, decode failures yield an empty list.
func tokenClaim(ctx context.Context, s auth.Session, claim string) (values []string, ok bool, err error) {
	token, found, err := s.GetAccessToken(ctx)
	if err != nil {
		return nil, false, err
	}
	if !found || token == "" {
		return nil, false, nil
	}
	return Claims(token)[claim], true, nil
}

// Claims decodes the second dot-delimited segment of a token as base64url
// JSON and returns its string-list claims. The header and signature are not
// inspected. Malformed tokens yield an empty map.
func Claims(token string) map[string][]string {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return map[string][]string{}
	}
	payload, err := gojwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return map[string][]string{}
	}
	claims := gojwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return map[string][]string{}
	}

	out := make(map[string][]string, len(claims))
	for name, raw := range claims {
		if list, ok := stringList(raw); ok {
			out[name] = list
		}
	}
	return out
}

func stringList(raw any) ([]string, bool) {
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

var (
	_ auth.Guard = (*AuthenticatedGuard)(nil)
	_ auth.Guard = (*RoleGuard)(nil)
	_ auth.Guard = (*PermissionGuard)(nil)
)
