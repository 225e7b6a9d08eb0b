package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/auth/credentials"
	"github.com/kbukum/authkit/auth/oauth2"
	"github.com/kbukum/authkit/authconfig"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/server"
)

const defaultCallbackPath = "/callback"

type loginOptions struct {
	provider  string
	noBrowser bool
	listen    string
	timeout   time.Duration
	username  string
	password  string
}

func newLoginCmd(root *rootOptions) *cobra.Command {
	o := &loginOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a provider of the current scheme",
		Long: `Log in with a provider of the current scheme and store the tokens.

OAuth2 providers open the browser on the vendor's consent page and receive
the redirect on a loopback server bound to the provider's redirect URI.
Credentials providers take --username and --password (or AUTHKIT_PASSWORD).

Examples:
  authkit login --provider google
  authkit login --provider github --no-browser
  authkit login --scheme staff --provider credentials --username ada`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd.Context(), cmd.OutOrStdout(), root, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.provider, "provider", "p", "", "provider id (default: the scheme's only provider)")
	f.BoolVar(&o.noBrowser, "no-browser", false, "print the login URL instead of opening a browser")
	f.StringVar(&o.listen, "listen", "", "loopback callback address (default: the redirect URI's host, else "+server.DefaultListen+")")
	f.DurationVar(&o.timeout, "timeout", 5*time.Minute, "how long to wait for the browser login")
	f.StringVarP(&o.username, "username", "u", "", "username for credentials providers")
	f.StringVar(&o.password, "password", "", "password for credentials providers (prefer AUTHKIT_PASSWORD)")
	return cmd
}

func runLogin(ctx context.Context, out io.Writer, root *rootOptions, o *loginOptions) error {
	redirector := root.redirector
	if redirector == nil {
		if o.noBrowser {
			redirector = printRedirector(out)
		} else {
			redirector = oauth2.BrowserRedirector{Out: out}
		}
	}

	s, err := root.open(ctx, authconfig.WithRedirector(redirector))
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.provider(o.provider)
	if err != nil {
		return err
	}

	var resp *auth.Response
	switch p := p.(type) {
	case *oauth2.Provider:
		resp, err = loginOAuth2(ctx, out, s, p, o)
	default:
		resp, err = loginCredentials(ctx, s, p, o)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Logged in to %s with %s", s.scheme.ID, p.Name())
	if who := displayName(resp.User); who != "" {
		fmt.Fprintf(out, " as %s", who)
	}
	fmt.Fprintln(out)
	return nil
}

func loginCredentials(ctx context.Context, s *session, p auth.Provider, o *loginOptions) (*auth.Response, error) {
	password := o.password
	if password == "" {
		password = os.Getenv("AUTHKIT_PASSWORD")
	}
	return s.client.Login(ctx, auth.AuthorizeOptions{
		Provider: p.ID(),
		Scheme:   s.scheme.ID,
		Params: map[string]any{
			credentials.ParamUsername: o.username,
			credentials.ParamPassword: password,
		},
	})
}

// loginOAuth2 runs both legs of the authorization-code flow around a
// loopback callback server.
func loginOAuth2(ctx context.Context, out io.Writer, s *session, p *oauth2.Provider, o *loginOptions) (*auth.Response, error) {
	listen, path, err := callbackAddr(p.RedirectURI(), o.listen)
	if err != nil {
		return nil, err
	}

	state, err := oauth2.GenerateState()
	if err != nil {
		return nil, errors.Internal(err)
	}
	pkce := oauth2.NewPKCE()

	srv := server.New(server.Config{Listen: listen}, s.log)
	callback := srv.Callback(path, state)
	if err := srv.Start(ctx); err != nil {
		return nil, err
	}
	defer srv.Stop(context.WithoutCancel(ctx))

	params := map[string]any{
		oauth2.ParamState:        state,
		oauth2.ParamCodeVerifier: pkce.CodeVerifier,
	}
	opts := auth.AuthorizeOptions{Provider: p.ID(), Scheme: s.scheme.ID, Params: params}

	resp, err := s.client.Login(ctx, opts)
	if !errors.Is(err, errors.ErrRedirectInProgress) {
		if err == nil {
			return resp, nil
		}
		return nil, err
	}
	fmt.Fprintf(out, "Waiting for the login to complete in the browser (%s)...\n", o.timeout)

	waitCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	result, err := callback.Wait(waitCtx)
	if err != nil {
		if waitCtx.Err() != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("timed out after %s waiting for the browser login", o.timeout)
		}
		return nil, err
	}

	params[oauth2.ParamCode] = result.Code
	return s.client.Login(ctx, opts)
}

// callbackAddr picks the loopback address and path from the redirect URI.
// listen, when set, overrides the address.
func callbackAddr(redirectURI, listen string) (string, string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", errors.InvalidInput("redirect_uri", err.Error())
	}
	path := u.Path
	if path == "" {
		path = defaultCallbackPath
	}
	if listen != "" {
		return listen, path, nil
	}
	if host := u.Hostname(); host == "localhost" || isLoopback(host) {
		if u.Port() != "" {
			return u.Host, path, nil
		}
	}
	return server.DefaultListen, path, nil
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func printRedirector(out io.Writer) oauth2.Redirector {
	return oauth2.RedirectorFunc(func(_ context.Context, u string) error {
		fmt.Fprintf(out, "Open this URL in a browser to log in:\n\n  %s\n\n", u)
		return nil
	})
}

// displayName picks a human-readable identity from a user profile.
func displayName(user map[string]any) string {
	for _, key := range []string{"email", "login", "username", "name", "id"} {
		switch v := user[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
