package authz

import "slices"

// Matcher decides whether a set of granted claims satisfies one required claim.
type Matcher interface {
	Satisfies(granted []string, required string) bool
}

// MatcherFunc is an adapter to use ordinary functions as Matcher.
type MatcherFunc func(granted []string, required string) bool

// Satisfies implements Matcher.
func (f MatcherFunc) Satisfies(granted []string, required string) bool {
	return f(granted, required)
}

var (
	// Exact requires the claim to be granted verbatim.
	Exact Matcher = MatcherFunc(func(granted []string, required string) bool {
		return slices.Contains(granted, required)
	})

	// Wildcard treats granted claims as patterns (see MatchPattern).
	Wildcard Matcher = MatcherFunc(MatchAny)
)

// HasAny reports whether at least one required claim is satisfied.
// An empty requirement is never satisfied.
func HasAny(m Matcher, granted, required []string) bool {
	for _, r := range required {
		if m.Satisfies(granted, r) {
			return true
		}
	}
	return false
}

// HasAll reports whether every required claim is satisfied.
// An empty requirement is vacuously satisfied.
func HasAll(m Matcher, granted, required []string) bool {
	for _, r := range required {
		if !m.Satisfies(granted, r) {
			return false
		}
	}
	return true
}
