package auth

import (
	"fmt"
	"slices"

	"github.com/kbukum/authkit/storage"
	"github.com/kbukum/authkit/validation"
)

// Config is the declaration a Client is built from. It is shared with the
// client and must not be mutated afterwards.
type Config struct {
	Schemes       map[string]*Scheme
	DefaultScheme string
	Storage       storage.Strategy
	Endpoints     *Endpoints
}

// Validate checks the configuration eagerly. New does not call it: a
// missing default scheme leaves the client without a current scheme.
func (c *Config) Validate() error {
	v := validation.New()
	v.Custom(c.Storage != nil, "storage", "is required")
	v.Custom(len(c.Schemes) > 0, "schemes", "at least one scheme is required")
	if c.DefaultScheme != "" {
		_, ok := c.Schemes[c.DefaultScheme]
		v.Custom(ok, "default_scheme", fmt.Sprintf("scheme %q is not declared", c.DefaultScheme))
	}

	names := make([]string, 0, len(c.Schemes))
	for name := range c.Schemes {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		scheme := c.Schemes[name]
		field := "schemes." + name
		if scheme == nil {
			v.AddError(field, "is nil")
			continue
		}
		v.OneOf(field+".options.token_type", string(scheme.Options.TokenType), []string{string(TokenBearer), string(TokenJWT)})

		seen := make([]string, 0, len(scheme.Providers))
		for _, p := range scheme.Providers {
			if slices.Contains(seen, p.ID()) {
				v.AddError(field+".providers", fmt.Sprintf("duplicate provider id %q", p.ID()))
				continue
			}
			seen = append(seen, p.ID())
		}
	}
	return v.Err()
}
