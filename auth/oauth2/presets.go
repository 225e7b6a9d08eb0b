package oauth2

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/authkit/httpclient"
)

// Preset ids.
const (
	ProviderGoogle   = "google"
	ProviderGitHub   = "github"
	ProviderFacebook = "facebook"
	ProviderDiscord  = "discord"
)

var (
	GoogleSpec = Spec{
		ID:   ProviderGoogle,
		Name: "Google",
		Endpoints: Endpoints{
			AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://www.googleapis.com/oauth2/v3/userinfo",
		},
		DefaultScopes: []string{"openid", "email", "profile"},
	}

	GitHubSpec = Spec{
		ID:   ProviderGitHub,
		Name: "GitHub",
		Endpoints: Endpoints{
			AuthorizeURL: "https://github.com/login/oauth/authorize",
			TokenURL:     "https://github.com/login/oauth/access_token",
			UserInfoURL:  "https://api.github.com/user",
		},
		DefaultScopes: []string{"read:user", "user:email"},
		UserInfo:      githubUserInfo,
	}

	FacebookSpec = Spec{
		ID:   ProviderFacebook,
		Name: "Facebook",
		Endpoints: Endpoints{
			AuthorizeURL: "https://facebook.com/v18.0/dialog/oauth",
			TokenURL:     "https://graph.facebook.com/v18.0/oauth/access_token",
			UserInfoURL:  "https://graph.facebook.com/me",
		},
		DefaultScopes: []string{"email", "public_profile"},
		UserInfo:      facebookUserInfo,
	}

	DiscordSpec = Spec{
		ID:   ProviderDiscord,
		Name: "Discord",
		Endpoints: Endpoints{
			AuthorizeURL: "https://discord.com/api/oauth2/authorize",
			TokenURL:     "https://discord.com/api/oauth2/token",
			UserInfoURL:  "https://discord.com/api/users/@me",
		},
		DefaultScopes: []string{"identify", "email"},
		Params:        map[string]string{"prompt": "consent"},
	}
)

// Presets maps preset ids to their specs.
var Presets = map[string]Spec{
	ProviderGoogle:   GoogleSpec,
	ProviderGitHub:   GitHubSpec,
	ProviderFacebook: FacebookSpec,
	ProviderDiscord:  DiscordSpec,
}

// Google creates a Google provider.
func Google(cfg Config, opts ...Option) (*Provider, error) { return New(GoogleSpec, cfg, opts...) }

// GitHub creates a GitHub provider. Its user info merges the profile with
// the primary address from /user/emails.
func GitHub(cfg Config, opts ...Option) (*Provider, error) { return New(GitHubSpec, cfg, opts...) }

// Facebook creates a Facebook provider. User info is requested with an
// explicit field list and the token as a query parameter.
func Facebook(cfg Config, opts ...Option) (*Provider, error) { return New(FacebookSpec, cfg, opts...) }

// Discord creates a Discord provider. The consent prompt is always forced.
func Discord(cfg Config, opts ...Option) (*Provider, error) { return New(DiscordSpec, cfg, opts...) }

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// githubHeaders pins the REST API version on both user-info requests.
var githubHeaders = map[string]string{"Accept": "application/vnd.github.v3+json"}

// githubUserInfo fetches the profile and the email list concurrently. Both
// must succeed; the primary email overrides the profile's public one.
func githubUserInfo(ctx context.Context, p *Provider, accessToken string) (map[string]any, error) {
	var (
		profile map[string]any
		emails  []githubEmail
	)
	userURL := p.Endpoints().UserInfoURL

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = httpclient.DoJSON[map[string]any](gctx, p.HTTP(), httpclient.Request{
			Method:  http.MethodGet,
			Path:    userURL,
			Headers: githubHeaders,
			Auth:    httpclient.BearerAuth(accessToken),
		})
		return err
	})
	g.Go(func() error {
		var err error
		emails, err = httpclient.DoJSON[[]githubEmail](gctx, p.HTTP(), httpclient.Request{
			Method:  http.MethodGet,
			Path:    strings.TrimSuffix(userURL, "/") + "/emails",
			Headers: githubHeaders,
			Auth:    httpclient.BearerAuth(accessToken),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if profile == nil {
		profile = make(map[string]any)
	}
	for _, e := range emails {
		if e.Primary {
			profile["email"] = e.Email
			profile["email_verified"] = e.Verified
			break
		}
	}
	return profile, nil
}

func facebookUserInfo(ctx context.Context, p *Provider, accessToken string) (map[string]any, error) {
	return httpclient.DoJSON[map[string]any](ctx, p.HTTP(), httpclient.Request{
		Method: http.MethodGet,
		Path:   p.Endpoints().UserInfoURL,
		Query:  map[string]string{"fields": "id,name,email,picture"},
		Auth:   httpclient.QueryAuth("access_token", accessToken),
	})
}
