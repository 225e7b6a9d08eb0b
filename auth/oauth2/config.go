package oauth2

import (
	"fmt"
	"time"

	"github.com/kbukum/authkit/validation"
)

// DefaultHTTPTimeout bounds each token, user-info and validation request.
const DefaultHTTPTimeout = 30 * time.Second

// Config holds OAuth2 client registration settings.
type Config struct {
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri" validate:"required,url"`

	// Scopes replace the provider's default scopes when non-empty.
	Scopes []string `mapstructure:"scopes"`

	// AdditionalParams are appended to the authorization URL.
	AdditionalParams map[string]string `mapstructure:"additional_params"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

// Validate checks required registration fields.
func (c *Config) Validate() error {
	return validation.New().
		Required("client_id", c.ClientID).
		Required("redirect_uri", c.RedirectURI).
		URL("redirect_uri", c.RedirectURI).
		Err()
}

// Endpoints are the three URLs of an OAuth2 vendor.
type Endpoints struct {
	AuthorizeURL string `mapstructure:"authorize_url" validate:"required,url"`
	TokenURL     string `mapstructure:"token_url" validate:"required,url"`
	UserInfoURL  string `mapstructure:"user_info_url" validate:"required,url"`
}

// Validate checks that all endpoints are absolute URLs.
func (e Endpoints) Validate() error {
	v := validation.New()
	for field, value := range map[string]string{
		"authorize_url": e.AuthorizeURL,
		"token_url":     e.TokenURL,
		"user_info_url": e.UserInfoURL,
	} {
		v.Required(field, value).URL(field, value)
	}
	if err := v.Err(); err != nil {
		return fmt.Errorf("oauth2 endpoints: %w", err)
	}
	return nil
}
