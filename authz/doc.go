// Package authz matches granted claims (roles, permissions) against the
// ones an action requires.
//
// Two matchers are provided. Exact compares strings verbatim. Wildcard
// treats granted values as "resource:action" patterns:
//
//	authz.HasAll(authz.Wildcard, []string{"article:*"}, []string{"article:read"}) // true
//	authz.HasAll(authz.Exact, []string{"article:*"}, []string{"article:read"})    // false
package authz
