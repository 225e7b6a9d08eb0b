package oauth2

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	xoauth2 "golang.org/x/oauth2"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/httpclient"
	"github.com/kbukum/authkit/logger"
)

// UserInfoFunc fetches the user profile for an access token.
type UserInfoFunc func(ctx context.Context, p *Provider, accessToken string) (map[string]any, error)

// Provider is an OAuth2 authorization-code provider.
type Provider struct {
	id            string
	name          string
	endpoints     Endpoints
	defaultScopes []string
	cfg           Config

	userInfo   UserInfoFunc
	redirector Redirector
	http       *httpclient.Client
	log        *logger.Logger
}

var (
	_ auth.Provider  = (*Provider)(nil)
	_ auth.Refresher = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

// WithRedirector sets how the user agent is sent to the authorization URL.
func WithRedirector(r Redirector) Option {
	return func(p *Provider) { p.redirector = r }
}

// WithHTTPClient sets the transport used for token and user-info requests.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(p *Provider) { p.http = c }
}

// WithEndpoints overrides the provider's endpoints.
func WithEndpoints(e Endpoints) Option {
	return func(p *Provider) { p.endpoints = e }
}

// WithUserInfo overrides how user info is fetched.
func WithUserInfo(fn UserInfoFunc) Option {
	return func(p *Provider) { p.userInfo = fn }
}

// WithID overrides the provider id, e.g. to register two Google clients in one scheme.
func WithID(id string) Option {
	return func(p *Provider) { p.id = id }
}

// WithLogger sets the provider logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// Spec describes an OAuth2 vendor.
type Spec struct {
	ID            string
	Name          string
	Endpoints     Endpoints
	DefaultScopes []string
	UserInfo      UserInfoFunc
	// Params are merged over the caller's additional params.
	Params map[string]string
}

// New creates a provider for the vendor described by spec.
func New(spec Spec, cfg Config, opts ...Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(spec.Params) > 0 {
		merged := make(map[string]string, len(cfg.AdditionalParams)+len(spec.Params))
		for k, v := range cfg.AdditionalParams {
			merged[k] = v
		}
		for k, v := range spec.Params {
			merged[k] = v
		}
		cfg.AdditionalParams = merged
	}

	p := &Provider{
		id:            spec.ID,
		name:          spec.Name,
		endpoints:     spec.Endpoints,
		defaultScopes: spec.DefaultScopes,
		cfg:           cfg,
		userInfo:      spec.UserInfo,
		redirector:    NopRedirector{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.endpoints.Validate(); err != nil {
		return nil, err
	}
	if p.http == nil {
		c, err := httpclient.New(httpclient.Config{Timeout: cfg.HTTPTimeout})
		if err != nil {
			return nil, err
		}
		p.http = c
	}
	p.log = logger.OrNop(p.log).WithComponent("oauth2").WithFields(logger.Fields(logger.FieldProvider, p.id))
	return p, nil
}

func (p *Provider) ID() string              { return p.id }
func (p *Provider) Name() string            { return p.name }
func (p *Provider) Type() auth.ProviderType { return auth.ProviderOAuth }

// Endpoints returns the provider's endpoints.
func (p *Provider) Endpoints() Endpoints { return p.endpoints }

// HTTP returns the transport used by the provider.
func (p *Provider) HTTP() *httpclient.Client { return p.http }

// RedirectURI returns the registered redirect URI.
func (p *Provider) RedirectURI() string { return p.cfg.RedirectURI }

// Scopes returns the configured scopes, or the vendor defaults.
func (p *Provider) Scopes() []string {
	if len(p.cfg.Scopes) > 0 {
		return p.cfg.Scopes
	}
	return p.defaultScopes
}

// AuthCodeURL builds the authorization URL. An empty state is omitted;
// a non-empty verifier adds an S256 PKCE challenge.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	oc := &xoauth2.Config{
		ClientID:    p.cfg.ClientID,
		RedirectURL: p.cfg.RedirectURI,
		Scopes:      p.Scopes(),
		Endpoint: xoauth2.Endpoint{
			AuthURL:  p.endpoints.AuthorizeURL,
			TokenURL: p.endpoints.TokenURL,
		},
	}

	opts := make([]xoauth2.AuthCodeOption, 0, len(p.cfg.AdditionalParams)+1)
	for k, v := range p.cfg.AdditionalParams {
		opts = append(opts, xoauth2.SetAuthURLParam(k, v))
	}
	if verifier != "" {
		opts = append(opts, xoauth2.S256ChallengeOption(verifier))
	}
	return oc.AuthCodeURL(state, opts...)
}

// Authorize runs the redirect leg when opts carries no "code", and the
// callback leg otherwise.
func (p *Provider) Authorize(ctx context.Context, opts auth.AuthorizeOptions) (*auth.Response, error) {
	verifier, _ := opts.Param(ParamCodeVerifier)

	code, ok := opts.Param(ParamCode)
	if !ok {
		state, _ := opts.Param(ParamState)
		authURL := p.AuthCodeURL(state, verifier)
		if err := p.redirector.Redirect(ctx, authURL); err != nil {
			return nil, err
		}
		p.log.Debug("redirect leg started")
		return nil, &RedirectError{Provider: p.id, URL: authURL}
	}

	form := url.Values{
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {p.cfg.RedirectURI},
	}
	if verifier != "" {
		form.Set(ParamCodeVerifier, verifier)
	}

	tok, err := p.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	user, err := p.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	return &auth.Response{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		User:         user,
	}, nil
}

// UserInfo fetches the user profile, through the vendor override when set.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	if p.userInfo != nil {
		return p.userInfo(ctx, p, accessToken)
	}
	return httpclient.DoJSON[map[string]any](ctx, p.http, httpclient.Request{
		Method: http.MethodGet,
		Path:   p.endpoints.UserInfoURL,
		Auth:   httpclient.BearerAuth(accessToken),
	})
}

// ValidateToken reports whether the user-info endpoint accepts token.
// Every failure, including network errors, is false.
func (p *Provider) ValidateToken(ctx context.Context, token string) bool {
	resp, err := p.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   p.endpoints.UserInfoURL,
		Auth:   httpclient.BearerAuth(token),
	})
	if err != nil {
		p.log.Debug("token validation failed", logger.ErrorFields("validate_token", err))
		return false
	}
	return resp.IsSuccess()
}

// RefreshAccessToken exchanges a refresh token. The response carries no user.
func (p *Provider) RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.Response, error) {
	tok, err := p.postToken(ctx, url.Values{
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return nil, err
	}
	return &auth.Response{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    *int64 `json:"expires_in"`
}

func (p *Provider) postToken(ctx context.Context, form url.Values) (tokenResponse, error) {
	return httpclient.DoJSON[tokenResponse](ctx, p.http, httpclient.Request{
		Method: http.MethodPost,
		Path:   p.endpoints.TokenURL,
		Body:   form,
	})
}

func (p *Provider) String() string {
	return fmt.Sprintf("oauth2(%s)", p.id)
}
