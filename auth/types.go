package auth

import "context"

// ProviderType classifies how a provider obtains credentials.
type ProviderType string

const (
	ProviderOAuth        ProviderType = "oauth"
	ProviderCredentials  ProviderType = "credentials"
	ProviderPasswordless ProviderType = "passwordless"
)

// TokenType is the Authorization scheme used when presenting the access token.
type TokenType string

const (
	TokenBearer TokenType = "Bearer"
	TokenJWT    TokenType = "JWT"
)

// Default storage keys.
const (
	DefaultAccessTokenKey  = "access_token"
	DefaultRefreshTokenKey = "refresh_token"
)

// Response is the result of a successful authorization or refresh.
type Response struct {
	AccessToken string `json:"access_token"`
	// RefreshToken is empty when the provider issued none.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresIn is the raw seconds-to-live reported by the provider, if any.
	ExpiresIn *int64         `json:"expires_in,omitempty"`
	User      map[string]any `json:"user,omitempty"`
}

// AuthorizeOptions is a request to begin or complete a login.
type AuthorizeOptions struct {
	Provider string
	Scheme   string
	// Params carries provider-specific input. For OAuth2 a non-empty
	// "code" selects the callback leg; credentials providers read
	// "username" and "password".
	Params map[string]any
}

// Param returns Params[key] when it is a non-empty string.
func (o AuthorizeOptions) Param(key string) (string, bool) {
	s, ok := o.Params[key].(string)
	return s, ok && s != ""
}

// Provider implements one authentication mechanism.
type Provider interface {
	ID() string
	Name() string
	Type() ProviderType
	Authorize(ctx context.Context, opts AuthorizeOptions) (*Response, error)
	// ValidateToken reports whether the provider accepts token. Failures of
	// any kind are false, never an error.
	ValidateToken(ctx context.Context, token string) bool
}

// Refresher is implemented by providers that can exchange a refresh token.
type Refresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (*Response, error)
}

// Session is the view of the authenticated state a guard evaluates.
type Session interface {
	GetAccessToken(ctx context.Context) (string, bool, error)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// Guard is an access predicate over a session. Returning false denies
// access; returning an error aborts the whole guard check.
type Guard interface {
	CanActivate(ctx context.Context, s Session) (bool, error)
}

// GuardFunc is an adapter to use ordinary functions as Guard.
type GuardFunc func(ctx context.Context, s Session) (bool, error)

// CanActivate implements Guard.
func (f GuardFunc) CanActivate(ctx context.Context, s Session) (bool, error) {
	return f(ctx, s)
}

// Endpoints are the application's own authentication routes, used by
// credentials-style providers.
type Endpoints struct {
	Login    string `mapstructure:"login" json:"login,omitempty"`
	Logout   string `mapstructure:"logout" json:"logout,omitempty"`
	Callback string `mapstructure:"callback" json:"callback,omitempty"`
	Refresh  string `mapstructure:"refresh" json:"refresh,omitempty"`
}
