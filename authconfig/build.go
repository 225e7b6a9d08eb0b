package authconfig

import (
	"context"
	"fmt"
	"slices"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/auth/credentials"
	"github.com/kbukum/authkit/auth/guard"
	"github.com/kbukum/authkit/auth/oauth2"
	"github.com/kbukum/authkit/encryption"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/httpclient"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/storage"
	"github.com/kbukum/authkit/storage/encrypted"
	"github.com/kbukum/authkit/validation"

	// Registers the "keyring" storage provider; "redis" comes with the import in file.go.
	_ "github.com/kbukum/authkit/storage/keyring"
)

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	storage    storage.Strategy
	redirector oauth2.Redirector
	oauthOpts  []oauth2.Option
	skipPing   bool
}

// WithStorage uses st instead of the configured storage provider, e.g. a
// per-request cookie strategy. A configured encryption key still applies.
func WithStorage(st storage.Strategy) BuildOption {
	return func(o *buildOptions) { o.storage = st }
}

// WithRedirector sets the redirector of every OAuth2 provider.
func WithRedirector(r oauth2.Redirector) BuildOption {
	return func(o *buildOptions) { o.redirector = r }
}

// WithOAuth2Options appends options to every OAuth2 provider.
func WithOAuth2Options(opts ...oauth2.Option) BuildOption {
	return func(o *buildOptions) { o.oauthOpts = append(o.oauthOpts, opts...) }
}

// WithoutPing skips the storage connectivity check.
func WithoutPing() BuildOption {
	return func(o *buildOptions) { o.skipPing = true }
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Build validates f and assembles the storage strategy, providers and guards
// into an auth.Config. Storage backends that support it are pinged with ctx.
func Build(ctx context.Context, f File, log *logger.Logger, opts ...BuildOption) (*auth.Config, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	log = logger.OrNop(log)

	if err := validation.Validate(&f); err != nil {
		return nil, err
	}

	st := o.storage
	if st == nil {
		var providerCfg any
		if f.Redis != nil {
			providerCfg = f.Redis
		}
		var err error
		if st, err = storage.New(f.Storage, providerCfg, log); err != nil {
			return nil, err
		}
		if p, ok := st.(pinger); ok && !o.skipPing {
			if err := p.Ping(ctx); err != nil {
				if c, ok := st.(storage.Closer); ok {
					_ = c.Close()
				}
				return nil, errors.Storage("ping", err)
			}
		}
	}
	if f.Storage.EncryptionKey != "" {
		wrapped, err := encrypted.Wrap(st, f.Storage.EncryptionKey, encryption.Algorithm(f.Storage.EncryptionAlgorithm), log)
		if err != nil {
			return nil, err
		}
		st = wrapped
	}

	cfg := &auth.Config{
		DefaultScheme: f.DefaultScheme,
		Storage:       st,
		Endpoints:     f.Endpoints,
		Schemes:       make(map[string]*auth.Scheme, len(f.Schemes)),
	}

	names := make([]string, 0, len(f.Schemes))
	for name := range f.Schemes {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		scheme, err := buildScheme(name, f.Schemes[name], f.Endpoints, log, &o)
		if err != nil {
			return nil, err
		}
		cfg.Schemes[name] = scheme
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info("auth configuration built", logger.Fields(
		"schemes", names,
		"default_scheme", f.DefaultScheme,
		logger.FieldStorage, f.Storage.Provider,
	))
	return cfg, nil
}

func buildScheme(name string, sf SchemeFile, endpoints *auth.Endpoints, log *logger.Logger, o *buildOptions) (*auth.Scheme, error) {
	scheme := &auth.Scheme{
		ID:   name,
		Name: sf.Name,
		Options: auth.SchemeOptions{
			TokenType:       auth.TokenType(sf.Options.TokenType),
			AccessTokenKey:  sf.Options.AccessTokenKey,
			RefreshTokenKey: sf.Options.RefreshTokenKey,
			ExpiresKey:      sf.Options.ExpiresKey,
		},
	}
	if scheme.Name == "" {
		scheme.Name = name
	}

	for i, gf := range sf.Guards {
		g, err := buildGuard(gf)
		if err != nil {
			return nil, fmt.Errorf("schemes.%s.guards[%d]: %w", name, i, err)
		}
		scheme.Guards = append(scheme.Guards, g)
	}

	for i, pf := range sf.Providers {
		p, err := buildProvider(pf, endpoints, log, o)
		if err != nil {
			return nil, fmt.Errorf("schemes.%s.providers[%d] (%s): %w", name, i, pf.Type, err)
		}
		scheme.Providers = append(scheme.Providers, p)
	}
	return scheme, nil
}

func buildGuard(gf GuardFile) (auth.Guard, error) {
	var opts []guard.Option
	if gf.Wildcards {
		opts = append(opts, guard.WithWildcards())
	}
	switch gf.Type {
	case GuardAuthenticated:
		return guard.Authenticated(), nil
	case GuardRole:
		if len(gf.Values) == 0 {
			return nil, errors.InvalidInput("values", "role guard needs at least one value")
		}
		return guard.Role(gf.Values, opts...), nil
	case GuardPermission:
		return guard.Permission(gf.Values, opts...), nil
	default:
		return nil, errors.InvalidInput("type", fmt.Sprintf("unknown guard type %q", gf.Type))
	}
}

func buildProvider(pf ProviderFile, endpoints *auth.Endpoints, log *logger.Logger, o *buildOptions) (auth.Provider, error) {
	if pf.Type == ProviderCredentials {
		if endpoints == nil {
			return nil, errors.InvalidInput("endpoints", "credentials providers need auth endpoints")
		}
		opts := []credentials.Option{credentials.WithLogger(log)}
		if pf.ID != "" {
			opts = append(opts, credentials.WithID(pf.ID))
		}
		return credentials.New(credentials.Config{
			Endpoints:   *endpoints,
			UserInfoURL: pf.UserInfoURL,
			HTTP:        httpclient.Config{BaseURL: pf.BaseURL, Timeout: pf.HTTPTimeout},
		}, opts...)
	}

	opts := []oauth2.Option{oauth2.WithLogger(log)}
	if o.redirector != nil {
		opts = append(opts, oauth2.WithRedirector(o.redirector))
	}
	if pf.ID != "" {
		opts = append(opts, oauth2.WithID(pf.ID))
	}
	if pf.Endpoints != nil {
		opts = append(opts, oauth2.WithEndpoints(*pf.Endpoints))
	}
	opts = append(opts, o.oauthOpts...)

	spec, ok := oauth2.Presets[pf.Type]
	if !ok {
		if pf.Endpoints == nil || pf.ID == "" {
			return nil, errors.InvalidInput("endpoints", "generic oauth2 providers need an id and endpoints")
		}
		spec = oauth2.Spec{ID: pf.ID, Name: pf.Name}
	}
	if pf.Name != "" {
		spec.Name = pf.Name
	}
	return oauth2.New(spec, pf.oauth2Config(), opts...)
}
