// Package credentials provides a username/password auth.Provider that talks
// to the application's own authentication endpoints.
package credentials

import (
	"context"
	"net/http"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/httpclient"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/validation"
)

// ProviderID is the default id of the credentials provider.
const ProviderID = "credentials"

// Authorize parameter names.
const (
	ParamUsername = "username"
	ParamPassword = "password"
)

// Config configures the credentials provider.
type Config struct {
	// Endpoints are the application's auth routes; Login is required.
	Endpoints auth.Endpoints `mapstructure:"endpoints"`
	// UserInfoURL is used to validate tokens.
	UserInfoURL string `mapstructure:"user_info_url" validate:"omitempty,url"`
	// HTTP configures the transport; BaseURL resolves relative endpoints.
	HTTP httpclient.Config `mapstructure:"http"`
}

// Validate checks that a login endpoint is configured.
func (c *Config) Validate() error {
	return validation.New().Required("endpoints.login", c.Endpoints.Login).Err()
}

// Provider authenticates with a username and password.
type Provider struct {
	id   string
	cfg  Config
	http *httpclient.Client
	log  *logger.Logger
}

var (
	_ auth.Provider  = (*Provider)(nil)
	_ auth.Refresher = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

// WithID overrides the provider id.
func WithID(id string) Option { return func(p *Provider) { p.id = id } }

// WithLogger sets the provider logger.
func WithLogger(log *logger.Logger) Option { return func(p *Provider) { p.log = log } }

// New creates a credentials provider.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return nil, err
	}
	p := &Provider{id: ProviderID, cfg: cfg, http: c}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logger.OrNop(p.log).WithComponent("credentials").WithFields(logger.Fields(logger.FieldProvider, p.id))
	return p, nil
}

func (p *Provider) ID() string              { return p.id }
func (p *Provider) Name() string            { return "Credentials" }
func (p *Provider) Type() auth.ProviderType { return auth.ProviderCredentials }

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    *int64         `json:"expires_in"`
	User         map[string]any `json:"user"`
}

func (t tokenResponse) toResponse() *auth.Response {
	return &auth.Response{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		User:         t.User,
	}
}

// Authorize posts the username and password from opts.Params to the login
// endpoint. Missing credentials fail before any request is made.
func (p *Provider) Authorize(ctx context.Context, opts auth.AuthorizeOptions) (*auth.Response, error) {
	username, ok := opts.Param(ParamUsername)
	if !ok {
		return nil, errors.InvalidCredentials("username is required")
	}
	password, ok := opts.Param(ParamPassword)
	if !ok {
		return nil, errors.InvalidCredentials("password is required")
	}

	tok, err := httpclient.DoJSON[tokenResponse](ctx, p.http, httpclient.Request{
		Method: http.MethodPost,
		Path:   p.cfg.Endpoints.Login,
		Body:   loginRequest{Username: username, Password: password},
	})
	if err != nil {
		if httpclient.IsAuth(err) {
			return nil, errors.InvalidCredentials("").WithCause(err)
		}
		return nil, err
	}
	return tok.toResponse(), nil
}

// ValidateToken asks the user-info endpoint whether token is accepted.
func (p *Provider) ValidateToken(ctx context.Context, token string) bool {
	if p.cfg.UserInfoURL == "" {
		return false
	}
	resp, err := p.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   p.cfg.UserInfoURL,
		Auth:   httpclient.BearerAuth(token),
	})
	if err != nil {
		p.log.Debug("token validation failed", logger.ErrorFields("validate_token", err))
		return false
	}
	return resp.IsSuccess()
}

// RefreshAccessToken posts the refresh token to the refresh endpoint.
func (p *Provider) RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.Response, error) {
	if p.cfg.Endpoints.Refresh == "" {
		return nil, errors.RefreshUnsupported(p.id)
	}
	tok, err := httpclient.DoJSON[tokenResponse](ctx, p.http, httpclient.Request{
		Method: http.MethodPost,
		Path:   p.cfg.Endpoints.Refresh,
		Body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, err
	}
	return tok.toResponse(), nil
}
