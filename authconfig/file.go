package authconfig

import (
	"time"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/auth/oauth2"
	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/redis"
	"github.com/kbukum/authkit/storage"
)

// Provider types accepted in configuration.
const (
	ProviderGoogle      = oauth2.ProviderGoogle
	ProviderGitHub      = oauth2.ProviderGitHub
	ProviderFacebook    = oauth2.ProviderFacebook
	ProviderDiscord     = oauth2.ProviderDiscord
	ProviderOAuth2      = "oauth2"
	ProviderCredentials = "credentials"
)

// Guard types accepted in configuration.
const (
	GuardAuthenticated = "authenticated"
	GuardRole          = "role"
	GuardPermission    = "permission"
)

// Document is a complete configuration file: the shared application
// settings plus the auth section.
type Document struct {
	config.AppConfig `yaml:",inline" mapstructure:",squash"`
	Auth             File `yaml:"auth" mapstructure:"auth"`
}

// File is the auth section of the configuration.
type File struct {
	DefaultScheme string                `mapstructure:"default_scheme"`
	Storage       storage.Config        `mapstructure:"storage"`
	Redis         *redis.Config         `mapstructure:"redis"`
	Endpoints     *auth.Endpoints       `mapstructure:"endpoints"`
	Schemes       map[string]SchemeFile `mapstructure:"schemes" validate:"required,min=1,dive"`
}

// SchemeFile declares one scheme.
type SchemeFile struct {
	Name      string         `mapstructure:"name"`
	Options   OptionsFile    `mapstructure:"options"`
	Guards    []GuardFile    `mapstructure:"guards" validate:"dive"`
	Providers []ProviderFile `mapstructure:"providers" validate:"dive"`
}

// OptionsFile mirrors auth.SchemeOptions.
type OptionsFile struct {
	TokenType       string `mapstructure:"token_type" validate:"omitempty,oneof=Bearer JWT"`
	AccessTokenKey  string `mapstructure:"access_token_key"`
	RefreshTokenKey string `mapstructure:"refresh_token_key"`
	ExpiresKey      string `mapstructure:"expires_key"`
}

// GuardFile declares a guard. Values are the required roles or permissions.
type GuardFile struct {
	Type      string   `mapstructure:"type" validate:"required,oneof=authenticated role permission"`
	Values    []string `mapstructure:"values"`
	Wildcards bool     `mapstructure:"wildcards"`
}

// ProviderFile declares a provider. OAuth2 fields apply to the vendor
// presets and to "oauth2", which also needs Endpoints. Credentials
// providers use the auth section's endpoints and UserInfoURL.
type ProviderFile struct {
	Type             string            `mapstructure:"type" validate:"required,oneof=google github facebook discord oauth2 credentials"`
	ID               string            `mapstructure:"id"`
	Name             string            `mapstructure:"name"`
	ClientID         string            `mapstructure:"client_id"`
	ClientSecret     string            `mapstructure:"client_secret"`
	RedirectURI      string            `mapstructure:"redirect_uri" validate:"omitempty,url"`
	Scopes           []string          `mapstructure:"scopes"`
	AdditionalParams map[string]string `mapstructure:"additional_params"`
	Endpoints        *oauth2.Endpoints `mapstructure:"endpoints"`
	UserInfoURL      string            `mapstructure:"user_info_url" validate:"omitempty,url"`
	BaseURL          string            `mapstructure:"base_url" validate:"omitempty,url"`
	HTTPTimeout      time.Duration     `mapstructure:"http_timeout"`
}

func (p ProviderFile) oauth2Config() oauth2.Config {
	return oauth2.Config{
		ClientID:         p.ClientID,
		ClientSecret:     p.ClientSecret,
		RedirectURI:      p.RedirectURI,
		Scopes:           p.Scopes,
		AdditionalParams: p.AdditionalParams,
		HTTPTimeout:      p.HTTPTimeout,
	}
}

// Load reads a Document for service with the config loader, applies the
// application defaults and validates it. Storage defaults are left to
// Build so callers can pick their own.
func Load(service string, opts ...config.LoaderOption) (*Document, error) {
	var doc Document
	if err := config.LoadConfig(service, &doc, opts...); err != nil {
		return nil, err
	}
	doc.ApplyDefaults()
	if err := doc.AppConfig.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
